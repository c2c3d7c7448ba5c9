package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25Okapi(t *testing.T) {
	t.Run("rare term scores its document above others", func(t *testing.T) {
		corpus := [][]string{
			{"сервер", "упал"},
			{"принтер", "сломался"},
			{"сервер", "принтер"},
		}
		b := newBM25Okapi(corpus)

		scores := b.Scores([]string{"упал"})
		require.Len(t, scores, 3)
		assert.Greater(t, scores[0], scores[1])
		assert.Greater(t, scores[0], scores[2])
		assert.Zero(t, scores[1])
	})

	t.Run("unknown query term contributes nothing", func(t *testing.T) {
		b := newBM25Okapi([][]string{{"сервер"}, {"принтер"}})

		scores := b.Scores([]string{"неизвестно"})
		assert.Equal(t, []float64{0, 0}, scores)
	})

	t.Run("higher term frequency scores higher at equal length", func(t *testing.T) {
		corpus := [][]string{
			{"ошибка", "ошибка"},
			{"ошибка", "сеть"},
			{"диск", "сеть"},
			{"диск", "плата"},
			{"сеть", "плата"},
		}
		b := newBM25Okapi(corpus)

		scores := b.Scores([]string{"ошибка"})
		assert.Greater(t, scores[0], scores[1])
	})

	t.Run("scores are in corpus order", func(t *testing.T) {
		corpus := [][]string{
			{"один"},
			{"два"},
			{"три"},
		}
		b := newBM25Okapi(corpus)

		scores := b.Scores([]string{"два"})
		assert.Zero(t, scores[0])
		assert.Positive(t, scores[1])
		assert.Zero(t, scores[2])
	})

	t.Run("empty query yields zero scores", func(t *testing.T) {
		b := newBM25Okapi([][]string{{"сервер"}})
		assert.Equal(t, []float64{0}, b.Scores(nil))
	})
}
