package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type productDef struct {
	name        string
	description string
	price       float64
}

type serviceDef struct {
	name        string
	description string
	products    []productDef
}

var catalogSeed = []serviceDef{
	{
		name:        "Sonido",
		description: "Amplificación y microfonía para eventos",
		products: []productDef{
			{"Sistema line array", "Dos torres line array con subwoofers", 1500000},
			{"Micrófono inalámbrico", "Micrófono de mano UHF", 45000},
			{"Consola digital", "Consola de 32 canales con operador", 380000},
		},
	},
	{
		name:        "Iluminación",
		description: "Iluminación escénica y ambiental",
		products: []productDef{
			{"Cabeza móvil beam", "Cabeza móvil 230W", 85000},
			{"Par LED RGBW", "Par LED para ambientación", 25000},
		},
	},
	{
		name:        "Pantallas",
		description: "Pantallas LED y proyección",
		products: []productDef{
			{"Pantalla LED P3.9", "Módulos por metro cuadrado", 120000},
			{"Proyector 10.000 lm", "Proyector con telón de 3x2 m", 350000},
		},
	},
}

// Seed populates the catalog with starter services and products. It is safe
// to call on every startup because it returns early if any service exists.
func Seed(app *pocketbase.PocketBase) error {
	servicesCol, err := app.FindCollectionByNameOrId("services")
	if err != nil {
		return fmt.Errorf("seed: could not find services collection: %w", err)
	}
	existing, err := app.FindAllRecords(servicesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query services: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}

	log.Println("seed: catalog is empty – inserting seed data …")

	return app.RunInTransaction(func(txApp core.App) error {
		for _, sd := range catalogSeed {
			svc := core.NewRecord(servicesCol)
			svc.Set("name", sd.name)
			svc.Set("description", sd.description)
			svc.Set("status", "active")
			if err := txApp.Save(svc); err != nil {
				return fmt.Errorf("seed: service %q: %w", sd.name, err)
			}
			for _, pd := range sd.products {
				p := core.NewRecord(productsCol)
				p.Set("service", svc.Id)
				p.Set("name", pd.name)
				p.Set("description", pd.description)
				p.Set("price", pd.price)
				p.Set("status", "active")
				if err := txApp.Save(p); err != nil {
					return fmt.Errorf("seed: product %q: %w", pd.name, err)
				}
			}
		}
		return nil
	})
}

// EnsureAdmin creates the first admin account when email and password are
// configured and no user with that email exists yet.
func EnsureAdmin(app *pocketbase.PocketBase, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := app.FindAuthRecordByEmail("users", email); err == nil {
		return nil
	}
	users, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		return fmt.Errorf("seed: could not find users collection: %w", err)
	}
	rec := core.NewRecord(users)
	rec.SetEmail(email)
	rec.SetPassword(password)
	rec.SetVerified(true)
	rec.Set("name", "Administrador")
	rec.Set("role", RoleAdmin)
	if err := app.Save(rec); err != nil {
		return fmt.Errorf("seed: could not create admin %s: %w", email, err)
	}
	log.Printf("seed: created admin user %s", email)
	return nil
}
