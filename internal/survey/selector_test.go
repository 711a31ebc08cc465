package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeCSSIdent(t *testing.T) {
	assert.Equal(t, "q_item-3", escapeCSSIdent("q_item-3"))
	assert.Equal(t, `\31 2-field`, escapeCSSIdent("12-field"))
	assert.Equal(t, `a\.b\:c`, escapeCSSIdent("a.b:c"))
	assert.Equal(t, "", escapeCSSIdent(""))
}

func TestResolveContainerSelector(t *testing.T) {
	dom := testConfig().DOM

	t.Run("id wins", func(t *testing.T) {
		sel := resolveContainerSelector(dom, rawQuestion{ContainerID: "q3", DataAttrValue: "x", PositionIndex: 2})
		assert.Equal(t, ".survey-container #q3", sel)
	})

	t.Run("data attribute next", func(t *testing.T) {
		sel := resolveContainerSelector(dom, rawQuestion{DataAttrValue: "pain-scale", PositionIndex: 2})
		assert.Equal(t, `.survey-container [data-question-id="pain-scale"]`, sel)
	})

	t.Run("structural position", func(t *testing.T) {
		sel := resolveContainerSelector(dom, rawQuestion{PositionIndex: 4})
		assert.Equal(t, ".survey-container .question-card:nth-of-type(4)", sel)
	})

	t.Run("never empty", func(t *testing.T) {
		sel := resolveContainerSelector(dom, rawQuestion{})
		assert.Equal(t, ".survey-container .question-card", sel)
	})
}

func TestResolveInputSelector(t *testing.T) {
	dom := testConfig().DOM
	container := ".survey-container #q3"

	t.Run("input id wins", func(t *testing.T) {
		sel := resolveInputSelector(dom, rawQuestion{InputID: "age", InputName: "n", InputTag: "input"}, container)
		assert.Equal(t, ".survey-container #age", sel)
	})

	t.Run("name qualified tag", func(t *testing.T) {
		sel := resolveInputSelector(dom, rawQuestion{InputName: "choice", InputTag: "input"}, container)
		assert.Equal(t, `.survey-container input[name="choice"]`, sel)
	})

	t.Run("container scoped tag", func(t *testing.T) {
		sel := resolveInputSelector(dom, rawQuestion{InputTag: "textarea"}, container)
		assert.Equal(t, ".survey-container #q3 textarea", sel)
	})

	t.Run("inputless widget targets container", func(t *testing.T) {
		sel := resolveInputSelector(dom, rawQuestion{}, container)
		assert.Equal(t, container, sel)
	})
}
