package history

import (
	"testing"

	"doc-qa-be/pkg/ragerr"
)

func TestToLLMMessages(t *testing.T) {
	tests := []struct {
		name    string
		history []Message
		wantErr bool
	}{
		{
			name:    "empty history",
			history: nil,
			wantErr: false,
		},
		{
			name: "valid conversation",
			history: []Message{
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "hi"},
			},
			wantErr: false,
		},
		{
			name:    "role is case insensitive",
			history: []Message{{Role: "User", Content: "hello"}},
			wantErr: false,
		},
		{
			name:    "role with surrounding whitespace",
			history: []Message{{Role: " assistant ", Content: "hi"}},
			wantErr: false,
		},
		{
			name:    "system role rejected",
			history: []Message{{Role: "system", Content: "be terse"}},
			wantErr: true,
		},
		{
			name:    "empty content rejected",
			history: []Message{{Role: "user", Content: "   "}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToLLMMessages(tt.history)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToLLMMessages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !ragerr.IsKind(err, ragerr.KindRetrieval) {
					t.Errorf("error kind = %v, want retrieval", err)
				}
				return
			}
			if len(got) != len(tt.history) {
				t.Errorf("message count = %d, want %d", len(got), len(tt.history))
			}
			for _, m := range got {
				if m.Role != RoleUser && m.Role != RoleAssistant {
					t.Errorf("normalized role = %q", m.Role)
				}
			}
		})
	}
}
