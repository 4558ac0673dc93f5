package likes

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLike_InsertsThenIncrements(t *testing.T) {
	s := NewStore()

	item := s.Like(KindCafeteria, "kimchi-jjigae", "김치찌개", "② 찌개 · 돌솥")
	assert.Equal(t, "cafeteria:kimchi-jjigae", item.ID)
	assert.Equal(t, 1, item.Likes)

	item = s.Like(KindCafeteria, "kimchi-jjigae", "김치찌개", "② 찌개 · 돌솥")
	assert.Equal(t, 2, item.Likes)
}

// The same slug under a different kind is a different entry.
func TestLike_KindsAreDistinct(t *testing.T) {
	s := NewStore()

	s.Like(KindCafeteria, "latte", "라떼", "학생식당")
	s.Like(KindCafe, "latte", "라떼", "쿱카페 후생관점")

	assert.Len(t, s.Ranking(), 2)
}

func TestRanking_SortedByLikesDesc(t *testing.T) {
	s := NewStore()

	s.Like(KindCafeteria, "a", "A", "src")
	s.Like(KindCafeteria, "b", "B", "src")
	s.Like(KindCafeteria, "b", "B", "src")
	s.Like(KindCafe, "c", "C", "src")
	s.Like(KindCafe, "c", "C", "src")
	s.Like(KindCafe, "c", "C", "src")

	ranking := s.Ranking()
	require.Len(t, ranking, 3)
	assert.Equal(t, "cafe:c", ranking[0].ID)
	assert.Equal(t, "cafeteria:b", ranking[1].ID)
	assert.Equal(t, "cafeteria:a", ranking[2].ID)
}

func TestRanking_StableTieBreak(t *testing.T) {
	s := NewStore()

	s.Like(KindCafeteria, "z", "Z", "src")
	s.Like(KindCafeteria, "a", "A", "src")

	ranking := s.Ranking()
	require.Len(t, ranking, 2)
	assert.Equal(t, "cafeteria:a", ranking[0].ID)
	assert.Equal(t, "cafeteria:z", ranking[1].ID)
}

func TestLike_Concurrent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Like(KindCafeteria, "hot", "인기메뉴", "src")
			}
		}()
	}
	wg.Wait()

	ranking := s.Ranking()
	require.Len(t, ranking, 1)
	assert.Equal(t, 1000, ranking[0].Likes)
}
