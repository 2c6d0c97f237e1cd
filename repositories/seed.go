package repositories

import (
	"fmt"

	"post-manager/models"
)

var seedWords = []string{
	"sunt", "qui", "esse", "dolorem", "magnam", "ea", "molestias", "et", "nesciunt", "eum",
	"ullam", "odio", "quas", "fugiat", "veniam", "voluptate", "temporibus", "repellat", "optio", "rerum",
}

// SeedPosts 는 id 1..n 의 결정적인 샘플 게시글을 만든다. userId 는 10 개씩 묶어 1 부터 증가한다.
func SeedPosts(n int) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 1; i <= n; i++ {
		w := func(k int) string { return seedWords[(i*k+k)%len(seedWords)] }
		posts = append(posts, models.Post{
			ID:     i,
			Title:  fmt.Sprintf("%s %s %s %d", w(1), w(3), w(7), i),
			Body:   fmt.Sprintf("%s %s %s %s\n%s %s %s", w(2), w(5), w(11), w(13), w(17), w(19), w(23)),
			UserID: (i-1)/10 + 1,
		})
	}
	return posts
}
