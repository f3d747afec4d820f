package service

import (
	"fmt"
	"time"

	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/models"
)

const (
	listTTL      = 60 * time.Second
	directoryTTL = 300 * time.Second

	tagArticles          = "articles"
	tagComments          = "comments"
	tagServices          = "services"
	tagServiceCategories = "service-categories"
)

func articleCommentsTag(articleID string) string {
	return "comments:article:" + articleID
}

// listKey normalizes list parameters, e.g. articles:list:p=1:l=10:q=go
func listKey(resource string, page models.Page, filters ...string) string {
	parts := []interface{}{resource, "list", fmt.Sprintf("p=%d", page.Page), fmt.Sprintf("l=%d", page.Limit)}
	for _, f := range filters {
		parts = append(parts, f)
	}
	return cache.Key(parts...)
}
