package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"docregister/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_Append(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	doc, rev := e.create(t, "org-a", "100")

	ev, err := e.events.Append(ctx, AppendEventInput{
		DocumentID: doc.ID, RevisionID: rev.ID, Kind: model.EventDownload, Actor: "bob", Description: "printed",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Positive(t, ev.Seq)

	_, err = e.events.Append(ctx, AppendEventInput{DocumentID: "missing", Kind: model.EventDownload, Actor: "bob"})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = e.events.Append(ctx, AppendEventInput{DocumentID: doc.ID, Kind: "edited", Actor: "bob"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.events.Timeline(ctx, "missing", 0, 0)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestEventService_TimelineIsStrictlyOrderedUnderFrozenClock(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	doc, _ := e.create(t, "org-a", "100")

	for i := 0; i < 5; i++ {
		_, err := e.events.Append(ctx, AppendEventInput{
			DocumentID: doc.ID, Kind: model.EventDownload, Actor: "bob", Description: fmt.Sprintf("d%d", i),
		})
		require.NoError(t, err)
	}

	events := e.timeline(t, doc.ID)
	require.Len(t, events, 6)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i].OccurredAt.After(events[i-1].OccurredAt), "event %d not after %d", i, i-1)
		assert.Greater(t, events[i].Seq, events[i-1].Seq)
	}
	assert.Equal(t, "d4", events[5].Description)

	page, err := e.events.Timeline(ctx, doc.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, events[1].ID, page.Items[0].ID)
}

func TestEventService_ConcurrentAppendAndRead(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	doc, _ := e.create(t, "org-a", "100")

	const writers = 8
	const perWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := e.events.Append(ctx, AppendEventInput{
					DocumentID: doc.ID, Kind: model.EventDownload, Actor: fmt.Sprintf("w%d", w),
				})
				assert.NoError(t, err)
			}
		}(w)
	}

	stop := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 2; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				res, err := e.events.Timeline(ctx, doc.ID, 0, 0)
				if !assert.NoError(t, err) {
					return
				}
				for i := 1; i < len(res.Items); i++ {
					assert.True(t, res.Items[i].OccurredAt.After(res.Items[i-1].OccurredAt))
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()

	assert.Len(t, e.timeline(t, doc.ID), 1+writers*perWriter)
}
