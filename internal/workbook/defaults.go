package workbook

import "SheetServe/internal/models"

// DefaultRecords is the content served before anything has been uploaded.
func DefaultRecords() []models.Record {
	return []models.Record{
		models.RecordOf("Name", "Seminar_Begin", "Data", 45709),
		models.RecordOf("Name", "Seminar_Ende", "Data", 45768),
		models.RecordOf("Name", "Praktikum_Begin", "Data", 45769),
		models.RecordOf("Name", "Praktikum_ende", "Data", 45831),
	}
}

func DefaultWorkbook() ([]byte, error) {
	return Encode(DefaultSheet, []string{"Name", "Data"}, DefaultRecords())
}
