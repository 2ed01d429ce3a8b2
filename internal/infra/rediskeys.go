package infra

const (
	// RedisNamespace — базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "dentops"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanRemediationPrefix — префикс каналов ремедиаций UI.
	// Полное имя канала = префикс + имя события (включая legacy-имена).
	RedisChanRemediationPrefix = RedisNamespace + ":ui:remediation:"

	// RedisChanGateDecisions — трансляция решений гейта для живых дашбордов.
	RedisChanGateDecisions = RedisNamespace + ":gate:decisions"
)

// RemediationChannel строит имя канала для события ремедиации.
func RemediationChannel(event string) string {
	return RedisChanRemediationPrefix + event
}
