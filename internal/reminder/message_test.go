package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogResolverKnownRecipe(t *testing.T) {
	t.Parallel()
	r := NewCatalogResolver()

	msg := r.Resolve("plum-wine", "Batch #3", CompletionDay)
	assert.Equal(t, "Plum wine: ready today", msg.Title)
	assert.Contains(t, msg.Body, "strain")
}

func TestCatalogResolverFallbacks(t *testing.T) {
	t.Parallel()
	r := NewCatalogResolver()

	// Unknown recipe falls back to project-name copy.
	msg := r.Resolve("mystery", "Dandelion wine", OneDayBefore)
	assert.Equal(t, "Dandelion wine: 1 day to go", msg.Title)

	// Empty everything still yields usable copy.
	msg = r.Resolve("", "", MidpointCheck)
	assert.Equal(t, "Your infusion: halfway check", msg.Title)
	assert.NotEmpty(t, msg.Body)

	msg = r.Resolve("", "X", DailyCheck(2))
	assert.Equal(t, "X: daily check", msg.Title)
}
