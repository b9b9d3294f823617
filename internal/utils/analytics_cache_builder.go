package utils

func BuildAnalyticsOverviewCacheKey(userID string) string {
	return "analytics:overview:v1:user=" + userID
}
