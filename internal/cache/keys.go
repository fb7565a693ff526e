package cache

// Key namespaces. Unrelated consumers build keys under distinct
// namespaces so they cannot collide; the store itself treats keys as
// opaque strings.
const (
	NamespaceScore   = "score"
	NamespaceMetrics = "metrics"
	NamespaceContent = "content"
)

const keySeparator = ":"

// Key builds a namespaced cache key ("namespace:scope").
func Key(namespace, scope string) string {
	return namespace + keySeparator + scope
}

// ScoreKey is the cache key for an account's computed health score.
func ScoreKey(accountID string) string {
	return Key(NamespaceScore, accountID)
}

// MetricsKey is the cache key for an account's external metrics.
func MetricsKey(accountID string) string {
	return Key(NamespaceMetrics, accountID)
}

// ContentKey is the cache key for an account's fetched content.
func ContentKey(accountID string) string {
	return Key(NamespaceContent, accountID)
}
