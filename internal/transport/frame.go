package transport

import (
	"encoding/json"
	"fmt"

	"coreader-client/internal/constant"
	"coreader-client/internal/dto"

	"github.com/go-playground/validator/v10"
)

type FrameKind int

const (
	FrameChunk FrameKind = iota
	FrameEnd
	FrameNoQuery
	FrameError
)

func (k FrameKind) String() string {
	switch k {
	case FrameChunk:
		return "chunk"
	case FrameEnd:
		return "end"
	case FrameNoQuery:
		return "no_query"
	case FrameError:
		return "error"
	}
	return fmt.Sprintf("FrameKind(%d)", int(k))
}

// Frame is one decoded inbound stream message.
type Frame struct {
	Kind      FrameKind
	Text      string
	Citations []dto.CitationDTO
}

// FrameDecoder turns raw channel messages into frames.
type FrameDecoder interface {
	Decode(raw string) (Frame, error)
}

func NewFrameDecoder(protocol string) (FrameDecoder, error) {
	switch protocol {
	case "", constant.StreamProtocolSentinel:
		return SentinelDecoder{}, nil
	case constant.StreamProtocolTagged:
		return NewTaggedDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported stream protocol: %s", protocol)
	}
}

// SentinelDecoder implements the raw text protocol: every message is literal
// answer text unless it equals one of the two sentinels exactly.
type SentinelDecoder struct{}

func (SentinelDecoder) Decode(raw string) (Frame, error) {
	switch raw {
	case constant.StreamEndSentinel:
		return Frame{Kind: FrameEnd}, nil
	case constant.StreamNoQuerySentinel:
		return Frame{Kind: FrameNoQuery}, nil
	default:
		return Frame{Kind: FrameChunk, Text: raw}, nil
	}
}

// TaggedDecoder implements the JSON frame protocol.
type TaggedDecoder struct {
	validate *validator.Validate
}

func NewTaggedDecoder() *TaggedDecoder {
	return &TaggedDecoder{validate: validator.New()}
}

func (d *TaggedDecoder) Decode(raw string) (Frame, error) {
	var tf dto.TaggedFrame
	if err := json.Unmarshal([]byte(raw), &tf); err != nil {
		return Frame{}, fmt.Errorf("decode tagged frame: %w", err)
	}
	if err := d.validate.Struct(&tf); err != nil {
		return Frame{}, fmt.Errorf("invalid tagged frame: %w", err)
	}

	switch tf.Type {
	case dto.FrameTypeChunk:
		return Frame{Kind: FrameChunk, Text: tf.Payload}, nil
	case dto.FrameTypeEnd:
		return Frame{Kind: FrameEnd, Citations: tf.Citations}, nil
	default:
		if tf.Payload == constant.StreamNoQueryCode {
			return Frame{Kind: FrameNoQuery}, nil
		}
		return Frame{Kind: FrameError, Text: tf.Payload}, nil
	}
}
