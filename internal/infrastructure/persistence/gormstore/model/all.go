package model

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&InspectionRecord{},
		&DefectRecord{},
		&Part{},
		&ReportCacheEntry{},
	}
}
