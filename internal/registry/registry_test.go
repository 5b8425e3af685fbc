package registry

import (
	"testing"

	"github.com/iliyamo/privacy2run/internal/model"
)

func TestUpsertReportsPresence(t *testing.T) {
	r := New()

	if replaced := r.Upsert(model.AuthCode{ID: 1, Token: "t1", Valid: true}); replaced {
		t.Fatalf("first upsert reported replaced")
	}
	if replaced := r.Upsert(model.AuthCode{ID: 1, Token: "t2", Valid: true}); !replaced {
		t.Fatalf("second upsert did not report replaced")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 record got %d", r.Len())
	}

	c, ok := r.Get(1)
	if !ok {
		t.Fatalf("record missing after upsert")
	}
	if c.Token != "t2" {
		t.Fatalf("expected last written token t2 got %s", c.Token)
	}
}

func TestSnapshotReflectsLastUpsert(t *testing.T) {
	r := New()
	r.Upsert(model.AuthCode{ID: 7, Token: "old", Valid: true})
	r.Upsert(model.AuthCode{ID: 7, Token: "new", Valid: true})

	snap := r.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected snapshot of 1 got %d", len(snap))
	}
	if snap[0].Token != "new" {
		t.Fatalf("snapshot holds stale token %s", snap[0].Token)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := New()
	r.Upsert(model.AuthCode{ID: 1, Token: "t", Valid: true})

	snap := r.Snapshot()
	r.Upsert(model.AuthCode{ID: 2, Token: "u", Valid: true})
	r.MarkInvalid(1)

	if len(snap) != 1 {
		t.Fatalf("snapshot grew after later upsert: %d", len(snap))
	}
	if !snap[0].Valid {
		t.Fatalf("snapshot mutated by later MarkInvalid")
	}
}

func TestMarkInvalid(t *testing.T) {
	r := New()
	r.Upsert(model.AuthCode{ID: 3, Token: "t", Valid: true})

	r.MarkInvalid(3)

	c, _ := r.Get(3)
	if c.Valid {
		t.Fatalf("record still valid after MarkInvalid")
	}
}

func TestMarkInvalidAbsentIsNoop(t *testing.T) {
	r := New()
	r.Upsert(model.AuthCode{ID: 3, Token: "t", Valid: true})

	r.MarkInvalid(99) // must not panic or disturb other records

	if r.Len() != 1 {
		t.Fatalf("registry size changed: %d", r.Len())
	}
	if c, _ := r.Get(3); !c.Valid {
		t.Fatalf("unrelated record invalidated")
	}
}
