package entity

import "testing"

func TestCreateDestroy_Lifecycle(t *testing.T) {
	s := New()
	id := s.CreateEntity()
	if !s.IsAlive(id) {
		t.Fatal("expected newly created entity to be alive")
	}
	s.DestroyEntity(id)
	if s.IsAlive(id) {
		t.Error("expected destroyed entity to report not alive")
	}
}

func TestDestroyEntity_ClearsComponentsBeforeReuse(t *testing.T) {
	s := New()
	id := s.CreateEntity()
	Emplace(s, id, Transform{X: 1, Y: 2})
	s.DestroyEntity(id)

	if Has[Transform](s, id) {
		t.Error("expected component store to be cleared on destroy")
	}

	reused := s.CreateEntity()
	if reused != id {
		t.Fatalf("expected id %d to be recycled, got %d", id, reused)
	}
	if Has[Transform](s, reused) {
		t.Error("recycled id must not retain the previous occupant's component")
	}
}

func TestEmplaceGetHasRemove(t *testing.T) {
	s := New()
	id := s.CreateEntity()

	if Has[Health](s, id) {
		t.Error("expected no Health component before Emplace")
	}
	Emplace(s, id, Health{Current: 100, Max: 100})
	if !Has[Health](s, id) {
		t.Error("expected Health component after Emplace")
	}
	h, ok := Get[Health](s, id)
	if !ok || h.Current != 100 {
		t.Fatalf("expected Health{100,100}, got %+v, ok=%v", h, ok)
	}

	Remove[Health](s, id)
	if Has[Health](s, id) {
		t.Error("expected Health component removed")
	}
}

func TestEmplace_OverwritesExistingValue(t *testing.T) {
	s := New()
	id := s.CreateEntity()
	Emplace(s, id, Score{Value: 10})
	Emplace(s, id, Score{Value: 20})
	v, _ := Get[Score](s, id)
	if v.Value != 20 {
		t.Errorf("expected overwritten value 20, got %d", v.Value)
	}
}

func TestView1_InsertionOrderStable(t *testing.T) {
	s := New()
	var ids []ID
	for i := 0; i < 5; i++ {
		id := s.CreateEntity()
		Emplace(s, id, Transform{X: float32(i)})
		ids = append(ids, id)
	}
	got := View1[Transform](s)
	if len(got) != len(ids) {
		t.Fatalf("expected %d entities, got %d", len(ids), len(got))
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("index %d: expected %d, got %d", i, ids[i], got[i])
		}
	}
}

func TestView2_Intersection(t *testing.T) {
	s := New()
	a := s.CreateEntity()
	Emplace(s, a, Transform{})
	Emplace(s, a, Velocity{})

	b := s.CreateEntity()
	Emplace(s, b, Transform{}) // no Velocity

	got := View2[Transform, Velocity](s)
	if len(got) != 1 || got[0] != a {
		t.Fatalf("expected [%d], got %v", a, got)
	}
}

func TestView2_ExcludesDestroyedEntities(t *testing.T) {
	s := New()
	a := s.CreateEntity()
	Emplace(s, a, Transform{})
	Emplace(s, a, Velocity{})
	b := s.CreateEntity()
	Emplace(s, b, Transform{})
	Emplace(s, b, Velocity{})

	s.DestroyEntity(a)

	got := View2[Transform, Velocity](s)
	if len(got) != 1 || got[0] != b {
		t.Fatalf("expected [%d] after destroying %d, got %v", b, a, got)
	}
}
