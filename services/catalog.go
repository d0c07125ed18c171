package services

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
)

// ErrDuplicate is returned when a catalog name is already taken.
var ErrDuplicate = errors.New("ya existe")

// Catalog statuses.
const (
	CatalogActive   = "active"
	CatalogInactive = "inactive"
)

// Service is a catalog service group.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Validate checks a service before it is stored.
func (s Service) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.By(notBlank("el nombre es obligatorio")), validation.Length(0, 120)),
		validation.Field(&s.Status, validation.In(CatalogActive, CatalogInactive).Error("estado desconocido")),
	)
}

// Product is a priced catalog entry under a service.
type Product struct {
	ID          string  `json:"id"`
	ServiceID   string  `json:"service"`
	ServiceName string  `json:"service_name"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
}

// Validate checks a product before it is stored.
func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ServiceID, validation.Required.Error("el servicio es obligatorio")),
		validation.Field(&p.Name, validation.By(notBlank("el nombre es obligatorio")), validation.Length(0, 200)),
		validation.Field(&p.Price, validation.Min(0.0).Error("el precio no puede ser negativo")),
		validation.Field(&p.Status, validation.In(CatalogActive, CatalogInactive).Error("estado desconocido")),
	)
}

// LineItem turns a catalog product into a quote row under its service.
func (p Product) LineItem(quantity int) LineItem {
	li := NewLineItem(p.Name, quantity, p.Price)
	li.ProductRef = p.ID
	li.ServiceGroupRef = p.ServiceID
	li.ServiceGroupName = p.ServiceName
	return li
}

// CatalogGroup is a service with its products, for the item picker.
type CatalogGroup struct {
	Service  Service
	Products []Product
}

func serviceFromRecord(rec *core.Record) Service {
	status := rec.GetString("status")
	if status == "" {
		status = CatalogActive
	}
	return Service{
		ID:          rec.Id,
		Name:        rec.GetString("name"),
		Description: rec.GetString("description"),
		Status:      status,
	}
}

func productFromRecord(rec *core.Record, serviceName string) Product {
	status := rec.GetString("status")
	if status == "" {
		status = CatalogActive
	}
	return Product{
		ID:          rec.Id,
		ServiceID:   rec.GetString("service"),
		ServiceName: serviceName,
		Name:        rec.GetString("name"),
		Description: rec.GetString("description"),
		Price:       nonNegative(rec.GetFloat("price")),
		Status:      status,
	}
}

// ListServices returns services ordered by name.
func ListServices(app core.App, activeOnly bool) ([]Service, error) {
	filter := "id != ''"
	if activeOnly {
		filter = "status != 'inactive'"
	}
	records, err := app.FindRecordsByFilter("services", filter, "name", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]Service, 0, len(records))
	for _, rec := range records {
		out = append(out, serviceFromRecord(rec))
	}
	return out, nil
}

// GetService loads one service.
func GetService(app core.App, id string) (Service, error) {
	rec, err := app.FindRecordById("services", id)
	if err != nil {
		return Service{}, fmt.Errorf("service %s not found: %w", id, err)
	}
	return serviceFromRecord(rec), nil
}

// SaveService creates or updates a service. Names are unique
// case-insensitively.
func SaveService(app core.App, s Service) (Service, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	if s.Status == "" {
		s.Status = CatalogActive
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	dup, err := app.FindRecordsByFilter(
		"services",
		"name ~ {:name} && id != {:id}",
		"", 0, 0,
		map[string]any{"name": s.Name, "id": s.ID},
	)
	if err != nil {
		return s, fmt.Errorf("check duplicate service: %w", err)
	}
	for _, rec := range dup {
		if strings.EqualFold(rec.GetString("name"), s.Name) {
			return s, fmt.Errorf("service %q %w", s.Name, ErrDuplicate)
		}
	}

	var rec *core.Record
	if s.ID != "" {
		rec, err = app.FindRecordById("services", s.ID)
		if err != nil {
			return s, fmt.Errorf("service %s not found: %w", s.ID, err)
		}
	} else {
		col, err := app.FindCollectionByNameOrId("services")
		if err != nil {
			return s, fmt.Errorf("find services collection: %w", err)
		}
		rec = core.NewRecord(col)
	}
	rec.Set("name", s.Name)
	rec.Set("description", s.Description)
	rec.Set("status", s.Status)
	if err := app.Save(rec); err != nil {
		return s, fmt.Errorf("save service: %w", err)
	}
	return serviceFromRecord(rec), nil
}

// DeleteService removes a service; its products cascade.
func DeleteService(app core.App, id string) error {
	rec, err := app.FindRecordById("services", id)
	if err != nil {
		return fmt.Errorf("service %s not found: %w", id, err)
	}
	return app.Delete(rec)
}

// ListProducts returns products ordered by name, optionally for one service.
func ListProducts(app core.App, serviceID string, activeOnly bool) ([]Product, error) {
	services, err := ListServices(app, false)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(services))
	for _, s := range services {
		names[s.ID] = s.Name
	}

	var conds []string
	params := map[string]any{}
	if serviceID != "" {
		conds = append(conds, "service = {:service}")
		params["service"] = serviceID
	}
	if activeOnly {
		conds = append(conds, "status != 'inactive'")
	}
	filter := "id != ''"
	if len(conds) > 0 {
		filter = strings.Join(conds, " && ")
	}

	records, err := app.FindRecordsByFilter("products", filter, "name", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, 0, len(records))
	for _, rec := range records {
		out = append(out, productFromRecord(rec, names[rec.GetString("service")]))
	}
	return out, nil
}

// GetProduct loads one product with its service name.
func GetProduct(app core.App, id string) (Product, error) {
	rec, err := app.FindRecordById("products", id)
	if err != nil {
		return Product{}, fmt.Errorf("product %s not found: %w", id, err)
	}
	serviceName := ""
	if svc, err := app.FindRecordById("services", rec.GetString("service")); err == nil {
		serviceName = svc.GetString("name")
	}
	return productFromRecord(rec, serviceName), nil
}

// SaveProduct creates or updates a product. Names are unique per service.
func SaveProduct(app core.App, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Status == "" {
		p.Status = CatalogActive
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	if _, err := app.FindRecordById("services", p.ServiceID); err != nil {
		return p, validation.Errors{"service": errors.New("servicio desconocido")}
	}

	dup, err := app.FindRecordsByFilter(
		"products",
		"service = {:service} && name ~ {:name} && id != {:id}",
		"", 0, 0,
		map[string]any{"service": p.ServiceID, "name": p.Name, "id": p.ID},
	)
	if err != nil {
		return p, fmt.Errorf("check duplicate product: %w", err)
	}
	for _, rec := range dup {
		if strings.EqualFold(rec.GetString("name"), p.Name) {
			return p, fmt.Errorf("product %q %w", p.Name, ErrDuplicate)
		}
	}

	var rec *core.Record
	if p.ID != "" {
		rec, err = app.FindRecordById("products", p.ID)
		if err != nil {
			return p, fmt.Errorf("product %s not found: %w", p.ID, err)
		}
	} else {
		col, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			return p, fmt.Errorf("find products collection: %w", err)
		}
		rec = core.NewRecord(col)
	}
	rec.Set("service", p.ServiceID)
	rec.Set("name", p.Name)
	rec.Set("description", p.Description)
	rec.Set("price", p.Price)
	rec.Set("status", p.Status)
	if err := app.Save(rec); err != nil {
		return p, fmt.Errorf("save product: %w", err)
	}
	return GetProduct(app, rec.Id)
}

// DeleteProduct removes a product. Quote rows keep their copied text.
func DeleteProduct(app core.App, id string) error {
	rec, err := app.FindRecordById("products", id)
	if err != nil {
		return fmt.Errorf("product %s not found: %w", id, err)
	}
	return app.Delete(rec)
}

// LoadCatalog returns active services with their active products, for the
// editor's item picker.
func LoadCatalog(app core.App) ([]CatalogGroup, error) {
	services, err := ListServices(app, true)
	if err != nil {
		return nil, err
	}
	products, err := ListProducts(app, "", true)
	if err != nil {
		return nil, err
	}
	byService := make(map[string][]Product)
	for _, p := range products {
		byService[p.ServiceID] = append(byService[p.ServiceID], p)
	}
	groups := make([]CatalogGroup, 0, len(services))
	for _, s := range services {
		groups = append(groups, CatalogGroup{Service: s, Products: byService[s.ID]})
	}
	return groups, nil
}
