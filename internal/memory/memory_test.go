package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T, max int) map[string]Store {
	t.Helper()
	b, err := OpenBadger(BadgerOptions{InMemory: true, MaxMessages: max})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	return map[string]Store{
		"inmemory": NewInMemoryStore(max),
		"badger":   b,
	}
}

func contents(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = string(m.Role) + ":" + m.Content
	}
	return out
}

func TestStore_AppendLoad(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			msgs, err := store.Load(ctx, "unknown")
			require.NoError(t, err)
			assert.Empty(t, msgs)

			require.NoError(t, store.Append(ctx, "s1",
				Message{Role: RoleUser, Content: "hi"},
				Message{Role: RoleAssistant, Content: "hello"},
			))
			require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Content: "bye"}))
			require.NoError(t, store.Append(ctx, "s2", Message{Role: RoleUser, Content: "other"}))

			msgs, err = store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, []string{"user:hi", "assistant:hello", "user:bye"}, contents(msgs))
			for _, m := range msgs {
				assert.Len(t, m.ID, 26)
				assert.False(t, m.Time.IsZero())
			}
			assert.True(t, sort.SliceIsSorted(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID }))

			msgs, err = store.Load(ctx, "s2")
			require.NoError(t, err)
			assert.Equal(t, []string{"user:other"}, contents(msgs))
		})
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 3) {
		t.Run(name, func(t *testing.T) {
			for i := 1; i <= 4; i++ {
				require.NoError(t, store.Append(ctx, "s", Message{Role: RoleUser, Content: fmt.Sprint(i)}))
			}
			msgs, err := store.Load(ctx, "s")
			require.NoError(t, err)
			assert.Equal(t, []string{"user:2", "user:3", "user:4"}, contents(msgs))

			// A batch larger than the limit keeps its newest messages.
			require.NoError(t, store.Append(ctx, "s",
				Message{Role: RoleUser, Content: "a"},
				Message{Role: RoleUser, Content: "b"},
				Message{Role: RoleUser, Content: "c"},
				Message{Role: RoleUser, Content: "d"},
			))
			msgs, err = store.Load(ctx, "s")
			require.NoError(t, err)
			assert.Equal(t, []string{"user:b", "user:c", "user:d"}, contents(msgs))
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 10) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append(ctx, "whatsapp:+1555", Message{Role: RoleUser, Content: "x"}))
			require.NoError(t, store.Append(ctx, "whatsapp:+1555/2", Message{Role: RoleUser, Content: "y"}))
			require.NoError(t, store.Clear(ctx, "whatsapp:+1555"))

			msgs, err := store.Load(ctx, "whatsapp:+1555")
			require.NoError(t, err)
			assert.Empty(t, msgs)

			msgs, err = store.Load(ctx, "whatsapp:+1555/2")
			require.NoError(t, err)
			assert.Len(t, msgs, 1, "sessions sharing a prefix stay separate")
		})
	}
}

func TestStore_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 100) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for s := 0; s < 4; s++ {
				wg.Add(1)
				go func(s int) {
					defer wg.Done()
					for i := 0; i < 10; i++ {
						assert.NoError(t, store.Append(ctx, fmt.Sprintf("sender-%d", s), Message{Role: RoleUser, Content: fmt.Sprint(i)}))
					}
				}(s)
			}
			wg.Wait()

			for s := 0; s < 4; s++ {
				msgs, err := store.Load(ctx, fmt.Sprintf("sender-%d", s))
				require.NoError(t, err)
				assert.Len(t, msgs, 10)
			}
		})
	}
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenBadger(BadgerOptions{Dir: dir, MaxMessages: 10})
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "s", Message{Role: RoleUser, Content: "remember me"}))
	require.NoError(t, store.Close())

	store, err = OpenBadger(BadgerOptions{Dir: dir, MaxMessages: 10})
	require.NoError(t, err)
	defer store.Close()

	msgs, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:remember me"}, contents(msgs))
}

func TestOpenBadger_RequiresDir(t *testing.T) {
	_, err := OpenBadger(BadgerOptions{})
	assert.ErrorContains(t, err, "directory is required")
}
