package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextID_Unique(t *testing.T) {
	r := New[string]()
	seen := make(map[int]bool)
	for range 100 {
		id := r.NextID()
		require.False(t, seen[id], "id %d reused", id)
		seen[id] = true
	}
	assert.True(t, seen[FirstID])
}

func TestInsertAndFind(t *testing.T) {
	r := New[string]()
	g := r.NextID()
	v := r.NextID()
	require.NoError(t, r.InsertGlobal(g, "global"))
	require.NoError(t, r.InsertScoped(1, v, "view"))

	got, err := r.Find(g)
	require.NoError(t, err)
	assert.Equal(t, "global", got)

	s, ok := r.ScopeOf(v)
	require.True(t, ok)
	assert.Equal(t, View(1), s)
	assert.Equal(t, "view:1", s.String())
	assert.Equal(t, 2, r.Len())
}

func TestInsert_DuplicateID(t *testing.T) {
	r := New[string]()
	id := r.NextID()
	require.NoError(t, r.InsertGlobal(id, "a"))
	assert.ErrorIs(t, r.InsertScoped(2, id, "b"), ErrDuplicateID)

	w := r.ReserveWindow()
	assert.ErrorIs(t, r.InsertGlobal(w, "c"), ErrDuplicateID)
}

func TestFind_NotFoundVersusNotPopup(t *testing.T) {
	r := New[string]()
	w := r.ReserveWindow()

	_, err := r.Find(w)
	assert.ErrorIs(t, err, ErrNotPopupWindow)

	_, err = r.Find(w + 1)
	assert.ErrorIs(t, err, ErrNotFound)

	r.ReleaseWindow(w)
	_, err = r.Find(w)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveByID(t *testing.T) {
	r := New[string]()
	a, b, c := r.NextID(), r.NextID(), r.NextID()
	require.NoError(t, r.InsertGlobal(a, "a"))
	require.NoError(t, r.InsertScoped(1, b, "b"))
	require.NoError(t, r.InsertScoped(2, c, "c"))

	v, ok := r.RemoveByID(c)
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = r.RemoveByID(c)
	assert.False(t, ok)

	v, ok = r.RemoveByID(a)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 1, r.Len())
}

func TestRemoveScoped_WrongScope(t *testing.T) {
	r := New[string]()
	id := r.NextID()
	require.NoError(t, r.InsertScoped(1, id, "x"))

	_, ok := r.RemoveScoped(View(2), id)
	assert.False(t, ok)
	_, ok = r.RemoveScoped(Global, id)
	assert.False(t, ok)

	_, ok = r.RemoveScoped(View(1), id)
	assert.True(t, ok)
}

func TestScope_NewestFirst(t *testing.T) {
	r := New[int]()
	var ids []int
	for i := range 3 {
		id := r.NextID()
		ids = append(ids, id)
		require.NoError(t, r.InsertGlobal(id, i))
	}

	assert.Equal(t, []int{ids[2], ids[1], ids[0]}, r.IDs(Global))
	front, v, ok := r.Front(Global)
	require.True(t, ok)
	assert.Equal(t, ids[2], front)
	assert.Equal(t, 2, v)
}

func TestClearAll_GlobalFirst(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.InsertScoped(5, r.NextID(), "v5"))
	require.NoError(t, r.InsertGlobal(r.NextID(), "g1"))
	require.NoError(t, r.InsertScoped(3, r.NextID(), "v3"))
	require.NoError(t, r.InsertGlobal(r.NextID(), "g2"))

	got := r.ClearAll()
	assert.Equal(t, []string{"g2", "g1", "v5", "v3"}, got)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, r.ScopeLen(View(5)))
}

func TestEach_StopsEarly(t *testing.T) {
	r := New[string]()
	for range 4 {
		require.NoError(t, r.InsertGlobal(r.NextID(), "x"))
	}
	n := 0
	r.Each(Global, func(int, string) bool {
		n++
		return n < 2
	})
	assert.Equal(t, 2, n)

	r.Each(View(9), func(int, string) bool {
		t.Fatal("unknown scope has no entries")
		return true
	})
}

func TestScopes_Order(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.InsertScoped(7, r.NextID(), "a"))
	require.NoError(t, r.InsertScoped(2, r.NextID(), "b"))
	assert.Equal(t, []Scope{Global, View(7), View(2)}, r.Scopes())
	assert.True(t, Global.IsGlobal())
	assert.Equal(t, 7, View(7).ViewID())
}

func TestDropView(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.InsertScoped(1, r.NextID(), "a"))
	require.NoError(t, r.InsertScoped(1, r.NextID(), "b"))
	require.NoError(t, r.InsertScoped(2, r.NextID(), "c"))

	assert.Equal(t, []string{"b", "a"}, r.DropView(1))
	assert.Equal(t, []Scope{Global, View(2)}, r.Scopes())
	assert.Equal(t, 1, r.Len())
	assert.Nil(t, r.DropView(1))
}
