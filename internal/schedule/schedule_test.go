package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryFieldsValidate(t *testing.T) {
	tests := []struct {
		name   string
		fields EntryFields
		ok     bool
	}{
		{"complete", EntryFields{Title: "Dentist", Date: "2024-03-15", Time: "09:30", Notes: "bring card"}, true},
		{"no time or notes", EntryFields{Title: "Dentist", Date: "2024-03-15"}, true},
		{"empty title", EntryFields{Title: "", Date: "2024-03-15"}, false},
		{"whitespace title", EntryFields{Title: "   ", Date: "2024-03-15"}, false},
		{"missing date", EntryFields{Title: "Dentist"}, false},
		{"bad date", EntryFields{Title: "Dentist", Date: "15/03/2024"}, false},
		{"impossible date", EntryFields{Title: "Dentist", Date: "2024-02-30"}, false},
		{"bad time", EntryFields{Title: "Dentist", Date: "2024-03-15", Time: "9am"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidEntry), "expected ErrInvalidEntry, got %v", err)
			}
		})
	}
}
