package nfc

import (
	"errors"
	"testing"
	"time"

	"github.com/callebjorkell/musicbox/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStep struct {
	present     bool
	presentErr  error
	response    []byte
	transmitErr error
}

type fakeChannel struct {
	steps       []fakeStep
	index       int
	current     fakeStep
	disconnects int
}

func (c *fakeChannel) Present() (bool, error) {
	if c.index >= len(c.steps) {
		return false, errors.New("fake channel exhausted")
	}
	c.current = c.steps[c.index]
	c.index++
	return c.current.present, c.current.presentErr
}

func (c *fakeChannel) Transmit(apdu []byte) ([]byte, error) {
	return c.current.response, c.current.transmitErr
}

func (c *fakeChannel) Disconnect() error {
	c.disconnects++
	return nil
}

type fakeContext struct {
	readers      []string
	listErr      error
	channels     []*fakeChannel
	connectErrs  []error
	connectCalls int
	released     bool
}

func (c *fakeContext) ListReaders() ([]string, error) {
	return c.readers, c.listErr
}

func (c *fakeContext) Connect(reader string) (Channel, error) {
	call := c.connectCalls
	c.connectCalls++
	if call < len(c.connectErrs) && c.connectErrs[call] != nil {
		return nil, c.connectErrs[call]
	}
	if len(c.channels) == 0 {
		return nil, errors.New("fake context has no channels left")
	}
	channel := c.channels[0]
	c.channels = c.channels[1:]
	return channel, nil
}

func (c *fakeContext) Release() error {
	c.released = true
	return nil
}

func cardSeen(uid card.ID) fakeStep {
	return fakeStep{present: true, response: append(append(card.ID{}, uid...), 0x90, 0x00)}
}

func reader(ctx *fakeContext) *PCSC {
	return newPCSC(ctx, time.Millisecond)
}

func TestSameCardReportedOnce(t *testing.T) {
	uid := card.ID{0x01, 0x02, 0x03, 0x04}
	const polls = 5

	steps := make([]fakeStep, 0, polls)
	for i := 0; i < polls; i++ {
		steps = append(steps, cardSeen(uid))
	}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{{steps: steps}}}
	r := reader(ctx)

	event, err := r.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, CardPresent, event.Kind)
	assert.True(t, uid.Equal(event.Card))

	for i := 0; i < polls-1; i++ {
		event, err := r.NextEvent()
		require.NoError(t, err)
		assert.Equal(t, Idle, event.Kind, "poll %v should be idle", i)
	}
}

func TestRemovalClearsDeduplication(t *testing.T) {
	uid := card.ID{0x0a, 0x0b}

	first := &fakeChannel{steps: []fakeStep{cardSeen(uid), {present: false}}}
	second := &fakeChannel{steps: []fakeStep{cardSeen(uid)}}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{first, second}}
	r := reader(ctx)

	event, err := r.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, CardPresent, event.Kind)

	// the card disappears and comes back; the same UID must trigger again
	event, err = r.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, CardPresent, event.Kind)
	assert.True(t, uid.Equal(event.Card))
	assert.Equal(t, 1, first.disconnects)
}

func TestDifferentCardTriggersWithoutRemoval(t *testing.T) {
	first := card.ID{0x01, 0x02}
	second := card.ID{0x03, 0x04}

	channel := &fakeChannel{steps: []fakeStep{cardSeen(first), cardSeen(second)}}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{channel}}
	r := reader(ctx)

	event, err := r.NextEvent()
	require.NoError(t, err)
	assert.True(t, first.Equal(event.Card))

	event, err = r.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, CardPresent, event.Kind)
	assert.True(t, second.Equal(event.Card))
}

func TestNoReadersIsNotAnError(t *testing.T) {
	ctx := &fakeContext{readers: nil}
	r := reader(ctx)

	event, ok, err := r.poll()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Event{}, event)
}

func TestNoCardOnConnectIsAbsorbed(t *testing.T) {
	uid := card.ID{0x0f}
	ctx := &fakeContext{
		readers:     []string{"fake"},
		connectErrs: []error{ErrNoCard, nil},
		channels:    []*fakeChannel{{steps: []fakeStep{cardSeen(uid)}}},
	}
	r := reader(ctx)

	_, ok, err := r.poll()
	require.NoError(t, err)
	assert.False(t, ok)

	event, err := r.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, CardPresent, event.Kind)
}

func TestRetryStatusDropsChannelSilently(t *testing.T) {
	uid := card.ID{0x01}
	flaky := &fakeChannel{steps: []fakeStep{
		{present: true, response: []byte{0x63, 0x00}},
	}}
	steady := &fakeChannel{steps: []fakeStep{cardSeen(uid)}}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{flaky, steady}}
	r := reader(ctx)

	event, err := r.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, CardPresent, event.Kind)
	assert.Equal(t, 1, flaky.disconnects)
}

func TestCardRemovedMidTransmitIsAbsorbed(t *testing.T) {
	uid := card.ID{0x02}
	dying := &fakeChannel{steps: []fakeStep{{present: true, transmitErr: ErrCardRemoved}}}
	steady := &fakeChannel{steps: []fakeStep{cardSeen(uid)}}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{dying, steady}}
	r := reader(ctx)

	event, err := r.NextEvent()
	require.NoError(t, err)
	assert.Equal(t, CardPresent, event.Kind)
}

func TestUnexpectedStatusWordPropagates(t *testing.T) {
	channel := &fakeChannel{steps: []fakeStep{
		{present: true, response: []byte{0x6a, 0x82}},
	}}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{channel}}
	r := reader(ctx)

	_, err := r.NextEvent()
	require.Error(t, err)

	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, byte(0x6a), status.SW1)
}

func TestShortResponsePropagates(t *testing.T) {
	channel := &fakeChannel{steps: []fakeStep{{present: true, response: []byte{0x90}}}}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{channel}}
	r := reader(ctx)

	_, err := r.NextEvent()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestListReadersFailurePropagates(t *testing.T) {
	ctx := &fakeContext{listErr: errors.New("daemon not running")}
	r := reader(ctx)

	_, err := r.NextEvent()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list readers")
}

func TestCloseReleasesContext(t *testing.T) {
	channel := &fakeChannel{steps: []fakeStep{cardSeen(card.ID{0x01})}}
	ctx := &fakeContext{readers: []string{"fake"}, channels: []*fakeChannel{channel}}
	r := reader(ctx)

	_, err := r.NextEvent()
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.True(t, ctx.released)
	assert.Equal(t, 1, channel.disconnects)
}
