package mq

import "errors"

var (
	// ErrNoChannel — AMQP канал не открыт (идёт переподключение).
	ErrNoChannel = errors.New("no amqp channel available")

	// ErrUnknownEvent — сообщение неизвестного типа.
	ErrUnknownEvent = errors.New("unknown event type")
)
