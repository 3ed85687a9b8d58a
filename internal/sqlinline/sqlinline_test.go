package sqlinline

import (
	"testing"

	"descsvc/internal/infra"
)

func TestStatementsCarryMarkers(t *testing.T) {
	statements := map[string]string{
		"QJobInsert":              QJobInsert,
		"QJobGetByJobID":          QJobGetByJobID,
		"QJobUpdate":              QJobUpdate,
		"QJobStatus":              QJobStatus,
		"QPromptList":             QPromptList,
		"QPromptGetByName":        QPromptGetByName,
		"QPromptGetByNameAndType": QPromptGetByNameAndType,
		"QPromptUpdate":           QPromptUpdate,
		"QPromptSeed":             QPromptSeed,
	}
	seen := make(map[string]string, len(statements))
	for name, stmt := range statements {
		marker, _, err := infra.SplitMarker(stmt)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if other, dup := seen[marker]; dup {
			t.Fatalf("%s reuses marker of %s", name, other)
		}
		seen[marker] = name
	}
}
