package eventbus

// 전역 토픽 선언: 기능별 기본 토픽 이름을 한 곳에서 관리합니다.

var (
	TopicPostEvents = NewTopic("post-manager.post.events")
)

var AllTopics = []Topic{
	TopicPostEvents,
}
