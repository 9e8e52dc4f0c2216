package sheets

// SheetsClient defines the interface for talking to the spreadsheet backend.
// This allows for mock implementations to be used in tests.
type SheetsClient interface {
	Get(entity Entity) ([]Row, error)
	Upsert(entity Entity, rows []Row) error
}
