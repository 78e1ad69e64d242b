package messaging

import (
	"testing"
	"time"
)

func TestTallyBrands(t *testing.T) {
	ids := []string{"nike", "apple", "nike", "unknown_1a2b3c4d", "nike", "apple"}

	tallies := tallyBrands(ids, 3)
	if len(tallies) != 3 {
		t.Fatalf("got %d tallies, want 3", len(tallies))
	}
	if tallies[0].BrandID != "nike" || tallies[0].Count != 3 {
		t.Errorf("top tally = %+v, want nike x3", tallies[0])
	}
	if tallies[0].Name != "Nike" {
		t.Errorf("catalog id should resolve to display name, got %q", tallies[0].Name)
	}
	if tallies[1].BrandID != "apple" || tallies[1].Count != 2 {
		t.Errorf("second tally = %+v, want apple x2", tallies[1])
	}
	if tallies[2].BrandID != "unknown_1a2b3c4d" || tallies[2].Name != "unknown_1a2b3c4d" {
		t.Errorf("uncataloged id should keep its id as name, got %+v", tallies[2])
	}
}

func TestTallyBrandsTieBreak(t *testing.T) {
	ids := []string{"apple", "nike"}

	tallies := tallyBrands(ids, 3)
	if len(tallies) != 2 {
		t.Fatalf("got %d tallies, want 2", len(tallies))
	}
	// Equal counts order by id for stable snapshots.
	if tallies[0].BrandID != "apple" || tallies[1].BrandID != "nike" {
		t.Errorf("tie order = %s, %s; want apple, nike", tallies[0].BrandID, tallies[1].BrandID)
	}
}

func TestTallyBrandsCapsAtN(t *testing.T) {
	tallies := tallyBrands([]string{"a", "b", "c", "d", "a"}, 2)
	if len(tallies) != 2 {
		t.Fatalf("got %d tallies, want 2", len(tallies))
	}
	if tallies[0].BrandID != "a" || tallies[0].Count != 2 {
		t.Errorf("top tally = %+v", tallies[0])
	}
}

func TestPublishFillsDefaults(t *testing.T) {
	b := NewActivityBroadcaster(nil, nil, nil)

	b.Publish(ActivityEvent{Username: "sam", Action: "brand_scanned", BrandID: "nike"})

	select {
	case event := <-b.events:
		if event.Type != "activity" {
			t.Errorf("type = %q, want activity", event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Error("timestamp was not backfilled")
		}
		if time.Since(event.Timestamp) > time.Minute {
			t.Errorf("timestamp %v is stale", event.Timestamp)
		}
	default:
		t.Fatal("event was not queued")
	}
}
