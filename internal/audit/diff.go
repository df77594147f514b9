package audit

import "github.com/PauloRoberto1224/gestaocontratopy/internal/model"

// Diff returns every tracked field whose canonical value differs between
// before and after. The result is empty, never nil, when nothing changed.
func Diff(before, after Snapshot) model.FieldChanges {
	changes := model.FieldChanges{}
	for _, f := range ContractFields {
		o, n := before[f.Name], after[f.Name]
		if equal(o, n) {
			continue
		}
		changes[f.Name] = model.FieldChange{Old: o, New: n}
	}
	return changes
}

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
