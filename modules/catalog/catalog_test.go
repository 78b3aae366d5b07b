package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const productsDoc = `[
  {
    "name": "Cakes",
    "category": "cake",
    "items": [
      {"item": "Cake", "price": 300, "callback_data": "cake_1"},
      {"item": "Cheesecake", "price": 450, "callback_data": "cake_2", "image_url": "cheesecake.jpg"}
    ]
  },
  {
    "name": "Cupcakes",
    "category": "cupcake",
    "items": [
      {"item": "Vanilla Cupcake", "price": 40, "callback_data": "cupcake_1"}
    ]
  }
]`

const coursesDoc = `[
  {"item": "Baking 101", "type": "course", "description": "Learn to bake", "price": 500, "image_url": "baking101.jpg"},
  {"item": "Pastry Art", "type": "course", "description": "Advanced pastry", "price": 900}
]`

func writeCatalog(t *testing.T, products, courses string) *Store {
	t.Helper()
	dir := t.TempDir()
	productsPath := filepath.Join(dir, "products.json")
	coursesPath := filepath.Join(dir, "courses.json")
	if products != "" {
		if err := os.WriteFile(productsPath, []byte(products), 0o644); err != nil {
			t.Fatalf("write products: %v", err)
		}
	}
	if courses != "" {
		if err := os.WriteFile(coursesPath, []byte(courses), 0o644); err != nil {
			t.Fatalf("write courses: %v", err)
		}
	}
	return NewStore(productsPath, coursesPath)
}

func TestLoadProducts(t *testing.T) {
	s := writeCatalog(t, productsDoc, coursesDoc)

	groups := s.LoadProducts()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Name != "Cakes" || groups[0].Category != "cake" {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if len(groups[0].Items) != 2 {
		t.Fatalf("expected 2 items in first group, got %d", len(groups[0].Items))
	}
	item := groups[0].Items[1]
	if item.Name != "Cheesecake" || item.Kind != KindProduct || item.Price != 450 ||
		item.Token != "cake_2" || item.ImageRef != "cheesecake.jpg" {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestLoadCourses(t *testing.T) {
	s := writeCatalog(t, productsDoc, coursesDoc)

	courses := s.LoadCourses()
	if len(courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(courses))
	}
	first := courses[0]
	if first.Name != "Baking 101" || first.Kind != KindCourse || first.Price != 500 ||
		first.Description != "Learn to bake" || first.Token != "course_Baking 101" {
		t.Fatalf("unexpected course: %+v", first)
	}
}

func TestSoftFailMissingFile(t *testing.T) {
	s := writeCatalog(t, "", "")
	if got := s.LoadProducts(); len(got) != 0 {
		t.Fatalf("expected empty products, got %d", len(got))
	}
	if got := s.LoadCourses(); len(got) != 0 {
		t.Fatalf("expected empty courses, got %d", len(got))
	}
}

func TestSoftFailMalformedFile(t *testing.T) {
	s := writeCatalog(t, "{broken", "also broken")
	if got := s.LoadProducts(); len(got) != 0 {
		t.Fatalf("expected empty products, got %d", len(got))
	}
	if got := s.LoadCourses(); len(got) != 0 {
		t.Fatalf("expected empty courses, got %d", len(got))
	}
}

func TestSoftFailEmptyFile(t *testing.T) {
	s := writeCatalog(t, "   \n", "\t")
	if got := s.LoadProducts(); len(got) != 0 {
		t.Fatalf("expected empty products, got %d", len(got))
	}
	if got := s.LoadCourses(); len(got) != 0 {
		t.Fatalf("expected empty courses, got %d", len(got))
	}
}

func TestCacheServesStaleUntilReload(t *testing.T) {
	s := writeCatalog(t, productsDoc, coursesDoc)
	if len(s.LoadProducts()) != 2 {
		t.Fatal("initial load failed")
	}

	// Replace the document behind the cache.
	updated := `[{"name": "Bread", "category": "bread", "items": [{"item": "Sourdough", "price": 120, "callback_data": "bread_1"}]}]`
	if err := os.WriteFile(s.productsPath, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	if got := s.LoadProducts(); len(got) != 2 {
		t.Fatalf("cache should serve the old catalog, got %d groups", len(got))
	}

	s.ReloadProducts()
	got := s.LoadProducts()
	if len(got) != 1 || got[0].Category != "bread" {
		t.Fatalf("reload did not replace the cache: %+v", got)
	}
}

func TestEmptyResultIsCached(t *testing.T) {
	s := writeCatalog(t, "", "")
	if len(s.LoadProducts()) != 0 {
		t.Fatal("expected empty products")
	}

	// A document appearing later must not be picked up without a reload.
	if err := os.WriteFile(s.productsPath, []byte(productsDoc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := s.LoadProducts(); len(got) != 0 {
		t.Fatalf("empty result should have been cached, got %d groups", len(got))
	}

	s.ReloadProducts()
	if got := s.LoadProducts(); len(got) != 2 {
		t.Fatalf("reload should pick up the new document, got %d groups", len(got))
	}
}

func TestFindProductAndCourse(t *testing.T) {
	s := writeCatalog(t, productsDoc, coursesDoc)

	entry, ok := s.FindProduct("Vanilla Cupcake")
	if !ok || entry.Price != 40 || entry.Kind != KindProduct {
		t.Fatalf("find product: ok=%v entry=%+v", ok, entry)
	}
	if _, ok := s.FindProduct("Unknown"); ok {
		t.Fatal("expected miss for unknown product")
	}

	course, ok := s.FindCourse("Pastry Art")
	if !ok || course.Price != 900 || course.Kind != KindCourse {
		t.Fatalf("find course: ok=%v entry=%+v", ok, course)
	}
	if _, ok := s.FindCourse("Unknown"); ok {
		t.Fatal("expected miss for unknown course")
	}
}
