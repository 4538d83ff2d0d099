// Package mq 基于 Watermill 封装消息发布/订阅，通过工厂按 MQType 创建实现.
//
// 支持的类型：
//   - nats（可选 JetStream）
//   - redis（Pub/Sub）
//   - memory（进程内 gochannel，开发与测试使用）
//
// 使用示例：
//
//	client, err := mq.New(ctx, &cfg.MQ)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), payload)
//	err = client.Publish(ctx, "cf.document.create", msg)
package mq

import (
	"context"
	"fmt"
	"sort"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/casefile/pkg/configs"
	nlog "github.com/yeisme/casefile/pkg/log"
)

// MQTypeMemory 进程内实现，不跨进程投递.
const MQTypeMemory configs.MQType = "memory"

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredTypes 返回已注册的 MQ 类型.
func GetRegisteredTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	closeFunc  func()
}

// NewClient 用现成的 Publisher/Subscriber 组装客户端.
func NewClient(pub message.Publisher, sub message.Subscriber) *Client {
	return &Client{publisher: pub, subscriber: sub}
}

// Publish 发布消息到 topic.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 订阅 topic.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭发布者、订阅者及指标服务.
func (c *Client) Close() error {
	var err error

	if c.publisher != nil {
		if e := c.publisher.Close(); e != nil {
			err = e
		}
	}

	if c.subscriber != nil {
		if e := c.subscriber.Close(); e != nil {
			err = e
		}
	}

	if c.closeFunc != nil {
		c.closeFunc()
	}

	return err
}

// New 按配置创建 MQ 客户端，开启 metrics 时装饰发布者与订阅者.
func New(ctx context.Context, cfg *configs.MQConfig, metricsEndpoint string) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	l := nlog.Component("mq")
	logger := &zerologAdapter{l: &l}

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	client := &Client{publisher: pub, subscriber: sub}

	if cfg.EnableMetrics && metricsEndpoint != "" {
		registry, closeMetrics := metrics.CreateRegistryAndServeHTTP(metricsEndpoint)
		builder := metrics.NewPrometheusMetricsBuilder(registry, configs.AppName, "mq")

		if client.publisher, err = builder.DecoratePublisher(pub); err != nil {
			closeMetrics()
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if client.subscriber, err = builder.DecorateSubscriber(sub); err != nil {
			closeMetrics()
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}

		client.closeFunc = closeMetrics

		l.Info().Str("endpoint", metricsEndpoint).Msg("mq metrics enabled")
	}

	l.Info().Str("type", string(cfg.Type)).Msg("mq client initialized")

	return client, nil
}
