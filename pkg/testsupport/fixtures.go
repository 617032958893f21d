package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-order-loader/orderset"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest interface{}) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteGolden writes test output to a golden file.
// This should typically only be called when updating golden files.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// MakeOrder builds an order without line items. n feeds the document number
// so test output stays readable; created drives both timestamps.
func MakeOrder(n int, status orderset.OrderStatus, created time.Time) orderset.Order {
	return orderset.Order{
		ID:        uuid.NewString(),
		Number:    fmt.Sprintf("ORD-%04d", n),
		ClientID:  uuid.NewString(),
		Status:    status,
		TaxRate:   0.21,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// MakeOrders builds count orders with descending creation times starting at
// base, matching the store's page ordering.
func MakeOrders(count int, status orderset.OrderStatus, base time.Time) []orderset.Order {
	orders := make([]orderset.Order, count)
	for i := range orders {
		orders[i] = MakeOrder(i+1, status, base.Add(-time.Duration(i)*time.Hour))
	}
	return orders
}

// MakeLineItems builds count line items for the given order with contiguous
// positions starting at 0.
func MakeLineItems(orderID string, count int) []orderset.LineItem {
	items := make([]orderset.LineItem, count)
	for i := range items {
		items[i] = orderset.LineItem{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			Position:    i,
			Description: fmt.Sprintf("item %d", i),
			Quantity:    1,
			UnitPrice:   10,
		}
	}
	return items
}
