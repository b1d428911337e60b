package i18n

import (
	"sort"
	"strings"

	"itinventory/pkg/models"

	"golang.org/x/text/language"
)

// Catalog holds display strings per language. The first language is the
// fallback.
type Catalog struct {
	tags     []language.Tag
	matcher  language.Matcher
	messages map[language.Tag]map[string]string
}

func NewCatalog(messages map[language.Tag]map[string]string, fallback language.Tag) *Catalog {
	tags := []language.Tag{fallback}
	for tag := range messages {
		if tag != fallback {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags[1:], func(i, j int) bool { return tags[i+1].String() < tags[j+1].String() })

	return &Catalog{
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		messages: messages,
	}
}

// Default is the built-in English and Vietnamese catalog.
func Default() *Catalog {
	return NewCatalog(map[language.Tag]map[string]string{
		language.English:    english,
		language.Vietnamese: vietnamese,
	}, language.English)
}

// Match picks the best supported language for an Accept-Language header.
func (c *Catalog) Match(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return c.tags[0]
	}
	_, index, _ := c.matcher.Match(prefs...)
	return c.tags[index]
}

// HasKey reports whether key is translated in any language.
func (c *Catalog) HasKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, messages := range c.messages {
		if _, ok := messages[key]; ok {
			return true
		}
	}
	return false
}

// Text returns the translation of key, falling back to the default language
// and then to the key itself.
func (c *Catalog) Text(tag language.Tag, key string) string {
	if text, ok := c.messages[tag][key]; ok {
		return text
	}
	if text, ok := c.messages[c.tags[0]][key]; ok {
		return text
	}
	return key
}

// Render resolves a condition to display text. Plain text that happens to
// be a known key is translated; anything else is shown as written.
func (c *Catalog) Render(tag language.Tag, condition models.Condition) string {
	if !condition.IsTemplated() {
		return c.Text(tag, condition.Text())
	}

	text := c.Text(tag, condition.Key())
	params := condition.Params()
	if text == condition.Key() && len(params) > 0 {
		parts := make([]string, 0, len(params))
		for _, name := range sortedKeys(params) {
			parts = append(parts, c.param(tag, params[name]))
		}
		return text + ": " + strings.Join(parts, ", ")
	}
	for name, value := range params {
		text = strings.ReplaceAll(text, "{"+name+"}", c.param(tag, value))
	}
	return text
}

// RenderEquipment is Render with the provenance fallback for rows that carry
// no condition.
func (c *Catalog) RenderEquipment(tag language.Tag, item models.Equipment) string {
	if !item.Condition.IsEmpty() {
		return c.Render(tag, item.Condition)
	}
	if item.IsRecalled {
		return c.Text(tag, "condition_returned")
	}
	return c.Text(tag, models.ConditionKeyNew)
}

func (c *Catalog) param(tag language.Tag, value models.ParamValue) string {
	if value.IsKey {
		return c.Text(tag, value.Value)
	}
	return value.Value
}

func sortedKeys(params map[string]models.ParamValue) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EquipmentView is an equipment row with its condition rendered for display.
type EquipmentView struct {
	models.Equipment
	ConditionText string `json:"conditionText"`
}

func (c *Catalog) Present(tag language.Tag, items []models.Equipment) []EquipmentView {
	views := make([]EquipmentView, 0, len(items))
	for _, item := range items {
		views = append(views, EquipmentView{Equipment: item, ConditionText: c.RenderEquipment(tag, item)})
	}
	return views
}
