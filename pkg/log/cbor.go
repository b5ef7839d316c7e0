package log

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// ErrCorruptCapture is returned when a capture file holds bytes that do not
// decode as a diagnostic event.
var ErrCorruptCapture = errors.New("corrupt diagnostics capture")

// Events are flat records, so anything nested deeper than the summary is
// not one of ours.
const maxEventNesting = 4

// captureCodec holds the CBOR modes of the capture file format. Timestamps
// are tagged RFC 3339 strings so captures stay readable by generic CBOR
// tools; decoding rejects duplicate keys and indefinite lengths, neither of
// which FileLogger ever writes.
type captureCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var capture = mustCaptureCodec()

func mustCaptureCodec() captureCodec {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
		TimeTag:       cbor.EncTagRequired,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: capture encoder mode: %v", err))
	}
	dec, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthForbidden,
		MaxNestedLevels: maxEventNesting,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: capture decoder mode: %v", err))
	}
	return captureCodec{enc: enc, dec: dec}
}

// EncodeEvent encodes an Event in the capture format.
func EncodeEvent(event Event) ([]byte, error) {
	return capture.enc.Marshal(event)
}

// DecodeEvent decodes a single event of the capture format.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := capture.dec.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrCorruptCapture, err)
	}
	return event, nil
}

func newCaptureEncoder(w io.Writer) *cbor.Encoder {
	return capture.enc.NewEncoder(w)
}

func newCaptureDecoder(r io.Reader) *cbor.Decoder {
	return capture.dec.NewDecoder(r)
}
