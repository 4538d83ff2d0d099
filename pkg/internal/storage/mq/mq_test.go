package mq

import (
	"context"
	"testing"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/casefile/pkg/configs"
)

// TestMemoryRoundTrip 进程内实现可以完成一次发布与消费.
func TestMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := New(ctx, &configs.MQConfig{Type: MQTypeMemory}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	ch, err := client.Subscribe(ctx, "cf.document.create")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"ok":true}`))
	msg.Metadata.Set("action", "document.create")

	if err := client.Publish(ctx, "cf.document.create", msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-ch:
		if string(got.Payload) != `{"ok":true}` || got.Metadata.Get("action") != "document.create" {
			t.Errorf("unexpected message: %s %v", got.Payload, got.Metadata)
		}

		got.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestUnsupportedType(t *testing.T) {
	if _, err := New(context.Background(), &configs.MQConfig{Type: "kafka"}, ""); err == nil {
		t.Error("expected error for unsupported mq type")
	}
}

func TestRedisEnvelope(t *testing.T) {
	msg := message.NewMessage("id-1", []byte("payload"))
	msg.Metadata.Set("topic", "cf.document.view")

	b, err := encodeEnvelope(msg)
	if err != nil {
		t.Fatalf("encodeEnvelope() error = %v", err)
	}

	got, err := decodeEnvelope(b)
	if err != nil {
		t.Fatalf("decodeEnvelope() error = %v", err)
	}

	if got.UUID != "id-1" || string(got.Payload) != "payload" || got.Metadata.Get("topic") != "cf.document.view" {
		t.Errorf("decoded = %+v", got)
	}
}
