package i18n

import (
	"testing"

	"itinventory/pkg/models"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	c := Default()

	assert.Equal(t, language.Vietnamese, c.Match("vi-VN,vi;q=0.9,en;q=0.8"))
	assert.Equal(t, language.English, c.Match("en-US"))
	assert.Equal(t, language.English, c.Match("fr-FR"))
	assert.Equal(t, language.English, c.Match(""))
}

func TestRenderCondition(t *testing.T) {
	c := Default()

	tests := []struct {
		name      string
		condition models.Condition
		tag       language.Tag
		want      string
	}{
		{"known plain key", models.PlainCondition("condition_good_as_new"), language.English, "Good as new"},
		{"free text", models.PlainCondition("screen cracked"), language.English, "screen cracked"},
		{"repaired with literal note", models.RepairedCondition("new fan", false), language.English, "Repaired: new fan"},
		{"repaired with key note", models.RepairedCondition("repair_note_cleaned", true), language.Vietnamese, "Đã sửa chữa: đã vệ sinh, bảo dưỡng"},
		{"unknown template", models.TemplatedCondition("custom", map[string]models.ParamValue{"b": {Value: "2"}, "a": {Value: "1"}}), language.English, "custom: 1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Render(tt.tag, tt.condition))
		})
	}
}

func TestRenderEquipmentFallsBackOnProvenance(t *testing.T) {
	c := Default()

	assert.Equal(t, "New", c.RenderEquipment(language.English, models.Equipment{}))
	assert.Equal(t, "Returned to stock", c.RenderEquipment(language.English, models.Equipment{IsRecalled: true}))
}

func TestHasKey(t *testing.T) {
	c := Default()

	assert.True(t, c.HasKey("repair_note_cleaned"))
	assert.False(t, c.HasKey("replaced the fan"))
	assert.False(t, c.HasKey(""))
}
