package events

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendStampsRecords(t *testing.T) {
	l := NewLog()
	assert.Zero(t, l.Count())

	auction := common.HexToHash("0x01")
	first := l.Append(Record{Type: TypeAuctionCreated, AuctionID: &auction})
	second := l.Append(Record{Type: TypeBidPlaced, AuctionID: &auction})

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Time.IsZero())
	assert.Equal(t, uint64(2), l.Count())
}

func TestTail(t *testing.T) {
	l := NewLog()
	for i := 0; i < 5; i++ {
		l.Append(Record{Type: TypeWithdrawal})
	}

	tail := l.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, uint64(4), tail[0].Seq)
	assert.Equal(t, uint64(5), tail[1].Seq)

	assert.Len(t, l.Tail(0), 5)
	assert.Len(t, l.Tail(100), 5)
}

func TestSince(t *testing.T) {
	l := NewLog()
	for i := 0; i < 5; i++ {
		l.Append(Record{Type: TypeWithdrawal})
	}

	recs := l.Since(3)
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(4), recs[0].Seq)
	assert.Equal(t, uint64(5), recs[1].Seq)

	assert.Len(t, l.Since(0), 5)
	assert.Empty(t, l.Since(5))
	assert.Empty(t, l.Since(99))
}

func TestSubscribeDelivers(t *testing.T) {
	l := NewLog()
	ch, cancel := l.Subscribe()
	defer cancel()

	appended := l.Append(Record{Type: TypeAuctionSettled})

	select {
	case got := <-ch:
		assert.Equal(t, appended.Seq, got.Seq)
		assert.Equal(t, TypeAuctionSettled, got.Type)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive record")
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	l := NewLog()
	ch, cancel := l.Subscribe()
	cancel()
	cancel() // safe to repeat

	l.Append(Record{Type: TypeWithdrawal})

	// The channel is closed and drained of anything buffered before cancel.
	_, open := <-ch
	assert.False(t, open)
}

func TestSlowSubscriberDoesNotBlockAppend(t *testing.T) {
	l := NewLog()
	ch, cancel := l.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			l.Append(Record{Type: TypeWithdrawal})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("append blocked on a slow subscriber")
	}

	// The buffer holds the oldest records; the overflow was dropped.
	assert.Len(t, ch, subscriberBuffer)
	got := <-ch
	assert.Equal(t, uint64(1), got.Seq)
}
