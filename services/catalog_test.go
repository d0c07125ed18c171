package services

import (
	"errors"
	"testing"

	"quotebuilder/testhelpers"
)

func TestSaveService_Duplicate(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if _, err := SaveService(app, Service{Name: "Sonido"}); err != nil {
		t.Fatalf("SaveService() error = %v", err)
	}
	_, err := SaveService(app, Service{Name: "  sonido "})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if _, err := SaveService(app, Service{Name: ""}); err == nil {
		t.Error("expected validation error for blank name")
	}
}

func TestSaveService_RenameKeepsID(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	s, err := SaveService(app, Service{Name: "Luces"})
	if err != nil {
		t.Fatalf("SaveService() error = %v", err)
	}
	s.Name = "Iluminación"
	renamed, err := SaveService(app, s)
	if err != nil {
		t.Fatalf("SaveService(rename) error = %v", err)
	}
	if renamed.ID != s.ID || renamed.Name != "Iluminación" {
		t.Errorf("renamed = %+v", renamed)
	}
}

func TestSaveProduct(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	sonido := testhelpers.CreateTestService(t, app, "Sonido")
	luces := testhelpers.CreateTestService(t, app, "Iluminación")

	p, err := SaveProduct(app, Product{ServiceID: sonido.Id, Name: "Parlante", Price: 45000})
	if err != nil {
		t.Fatalf("SaveProduct() error = %v", err)
	}
	if p.ServiceName != "Sonido" || p.Status != CatalogActive {
		t.Errorf("product = %+v", p)
	}

	if _, err := SaveProduct(app, Product{ServiceID: sonido.Id, Name: "PARLANTE", Price: 1}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate within a service, got %v", err)
	}
	if _, err := SaveProduct(app, Product{ServiceID: luces.Id, Name: "Parlante", Price: 1}); err != nil {
		t.Errorf("same name under another service should be allowed: %v", err)
	}
	if _, err := SaveProduct(app, Product{ServiceID: "missing", Name: "X"}); err == nil {
		t.Error("expected error for unknown service")
	}
	if _, err := SaveProduct(app, Product{ServiceID: sonido.Id, Name: "Y", Price: -1}); err == nil {
		t.Error("expected error for negative price")
	}
}

func TestLoadCatalog_ActiveOnly(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	sonido := testhelpers.CreateTestService(t, app, "Sonido")
	testhelpers.CreateTestProduct(t, app, sonido.Id, "Parlante", 45000)
	old := testhelpers.CreateTestProduct(t, app, sonido.Id, "Casetera", 1000)
	old.Set("status", CatalogInactive)
	if err := app.Save(old); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}
	hidden := testhelpers.CreateTestService(t, app, "Karaoke")
	hidden.Set("status", CatalogInactive)
	if err := app.Save(hidden); err != nil {
		t.Fatalf("deactivate service: %v", err)
	}

	groups, err := LoadCatalog(app)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(groups) != 1 || groups[0].Service.Name != "Sonido" {
		t.Fatalf("groups = %+v", groups)
	}
	if len(groups[0].Products) != 1 || groups[0].Products[0].Name != "Parlante" {
		t.Errorf("products = %+v", groups[0].Products)
	}

	item := groups[0].Products[0].LineItem(0)
	if item.Quantity != 1 || item.ServiceGroupName != "Sonido" || item.UnitPrice != 45000 {
		t.Errorf("line item from product = %+v", item)
	}
}

func TestImportCatalog(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	sonido := testhelpers.CreateTestService(t, app, "Sonido")
	testhelpers.CreateTestProduct(t, app, sonido.Id, "Parlante", 40000)

	summary, err := ImportCatalog(app, []Product{
		{ServiceName: "sonido", Name: "parlante", Price: 45000},
		{ServiceName: "Pantallas", Name: "LED 3x2", Price: 600000},
		{ServiceName: "Pantallas", Name: "Proyector", Price: 90000},
	})
	if err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}
	want := ImportSummary{ServicesCreated: 1, ProductsCreated: 2, ProductsUpdated: 1}
	if summary != want {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}

	products, err := ListProducts(app, sonido.Id, false)
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(products) != 1 || products[0].Price != 45000 {
		t.Errorf("existing product not updated: %+v", products)
	}
}
