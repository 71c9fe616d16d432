package eventbus

type StaticEventType string

const (
	StaticEventSaved   StaticEventType = "Saved"
	StaticEventDeleted StaticEventType = "Deleted"
)

// StaticEvent 静态资源变更事件；Name 为存储内名称，Key 为远端对象 key
type StaticEvent struct {
	Type StaticEventType
	Name string
	Key  string
	Size int64
}

type StaticEventHandler = Handler[StaticEvent]
type StaticEventBus = Bus[StaticEventType, StaticEvent]

func NewStaticEventBus() *StaticEventBus {
	return NewBus[StaticEventType, StaticEvent]()
}
