package lesson

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/examprep/internal/block"
)

func TestCatalogFirstAndFind(t *testing.T) {
	var empty Catalog
	if _, ok := empty.First(); ok {
		t.Error("expected empty catalog to have no first task")
	}
	if got := empty.FirstRef(); got != "" {
		t.Errorf("FirstRef() = %q, want empty", got)
	}

	c := Catalog{{ID: "5", TaskNumber: 1}, {ID: "9", TaskNumber: 2}}
	if got := c.FirstRef(); got != "5" {
		t.Errorf("FirstRef() = %q, want 5", got)
	}
	task, ok := c.Find("9")
	if !ok || task.TaskNumber != 2 {
		t.Errorf("Find(9) = %+v, %v", task, ok)
	}
	if _, ok := c.Find("1"); ok {
		t.Error("Find(1) should miss")
	}
}

func TestFromWire(t *testing.T) {
	l, err := FromWire("L1", "G1", "Logs", []block.Wire{
		{Type: "THEORY", Content: "hi"},
		{Type: "TASK", Content: "5"},
	})
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if len(l.Blocks) != 2 || l.Blocks[1].Tag() != block.TagTask {
		t.Errorf("unexpected blocks: %+v", l.Blocks)
	}

	_, err = FromWire("L1", "G1", "Logs", []block.Wire{{Type: "AUDIO"}})
	if !errors.Is(err, block.ErrUnknownTag) {
		t.Errorf("err = %v, want ErrUnknownTag", err)
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFrom(ctx); ok {
		t.Error("expected no identity on bare context")
	}
	ctx = WithIdentity(ctx, Identity{LearnerID: "u1", Role: RoleStudent})
	id, ok := IdentityFrom(ctx)
	if !ok || id.LearnerID != "u1" || id.Role != RoleStudent {
		t.Errorf("IdentityFrom = %+v, %v", id, ok)
	}
}

func TestLoadErrorUnwraps(t *testing.T) {
	err := error(&LoadError{Op: "lesson L1", Err: ErrNotFound})
	if !errors.Is(err, ErrNotFound) {
		t.Error("LoadError should unwrap to ErrNotFound")
	}
	if err.Error() != "load lesson L1: not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name      string
		draft     Draft
		wantIndex int
		wantOK    bool
	}{
		{"valid", Draft{Title: "Logs", Blocks: []block.Wire{{Type: "THEORY", Content: ""}, {Type: "TASK", Content: "5"}}}, 0, true},
		{"blank title", Draft{Title: "  ", Blocks: []block.Wire{{Type: "CHECK"}}}, -1, false},
		{"no blocks", Draft{Title: "Logs"}, -1, false},
		{"unknown tag", Draft{Title: "Logs", Blocks: []block.Wire{{Type: "CHECK"}, {Type: "VIDEO"}}}, 1, false},
		{"empty task ref", Draft{Title: "Logs", Blocks: []block.Wire{{Type: "TASK", Content: " "}}}, 0, false},
		{"count out of range", Draft{Title: "Logs", Blocks: []block.Wire{{Type: "TASK_GROUP", Content: `{"topicId":null,"count":21}`}}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *block.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *block.ValidationError", err)
			}
			if verr.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", verr.Index, tt.wantIndex)
			}
		})
	}
}
