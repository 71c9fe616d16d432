package subscriber

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/eventbus"
)

type staticInvalidator interface {
	Invalidate(name string)
}

// StaticEventSubscriber 静态资源变更后使旧的带哈希名称失效
type StaticEventSubscriber struct {
	storage staticInvalidator
}

func NewStaticEventSubscriber(storage staticInvalidator) *StaticEventSubscriber {
	return &StaticEventSubscriber{storage: storage}
}

func (s *StaticEventSubscriber) Register(bus *eventbus.StaticEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.StaticEventSaved, s.handleSaved)
	bus.Subscribe(eventbus.StaticEventDeleted, s.handleDeleted)
}

func (s *StaticEventSubscriber) handleSaved(ctx context.Context, event eventbus.StaticEvent) error {
	if event.Name == "" {
		return fmt.Errorf("静态资源名称为空")
	}
	s.storage.Invalidate(event.Name)
	klog.V(6).Infof("静态资源事件处理成功: type=%s, name=%s, key=%s, size=%s", event.Type, event.Name, event.Key, humanize.Bytes(uint64(event.Size)))
	return nil
}

// handleDeleted 删除时存储已自行清理，这里只记录
func (s *StaticEventSubscriber) handleDeleted(ctx context.Context, event eventbus.StaticEvent) error {
	klog.V(6).Infof("静态资源事件处理成功: type=%s, name=%s, key=%s", event.Type, event.Name, event.Key)
	return nil
}
