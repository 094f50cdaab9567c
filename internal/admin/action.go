package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Annany2002/nebula-admin/internal/i18n"
)

// ActionHandler runs an action against the selection in req.
type ActionHandler func(ctx context.Context, req ActionRequest) (ActionResult, error)

// Action is a named bulk operation of a table category.
type Action struct {
	Name                string
	Title               i18n.Text
	Description         i18n.Text
	ShortDescription    i18n.Text
	ConfirmationText    i18n.Text
	BaseColor           string
	Icon                string
	Variant             string
	AllowEmptySelection bool
	// FormSchema, when set, describes input the user fills in before running the action.
	FormSchema *FieldsSchema
	Handler    ActionHandler
}

// ListFilters is the list state an action was invoked from.
type ListFilters struct {
	Search  string         `json:"search"`
	Filters map[string]any `json:"filters"`
}

// ActionData is the action request body.
type ActionData struct {
	PKs       []any          `json:"pks"`
	FormData  map[string]any `json:"form_data"`
	Filters   ListFilters    `json:"filters"`
	SendToAll bool           `json:"send_to_all"`
}

// ActionRequest is what a handler receives.
type ActionRequest struct {
	Data ActionData
	// Form is FormData after deserialization through the action's form
	// schema; nil when the action has none.
	Form    *OrderedMap[any]
	Table   *CategoryTable
	Context FieldContext
}

// ActionMessage is a toast shown after an action.
type ActionMessage struct {
	Text     i18n.Text
	Type     string
	Position string
}

// Message returns a success toast at the top center.
func Message(text i18n.Text) *ActionMessage {
	return &ActionMessage{Text: text, Type: "success", Position: "top-center"}
}

// ActionResult is what an action reports back.
type ActionResult struct {
	Message           *ActionMessage
	PersistentMessage i18n.Text
}

// ActionMessageBody is the wire form of ActionMessage.
type ActionMessageBody struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Position string `json:"position"`
}

// ActionResultBody is the wire form of ActionResult.
type ActionResultBody struct {
	Message           *ActionMessageBody `json:"message"`
	PersistentMessage *string            `json:"persistent_message"`
}

// Body localizes the result.
func (r ActionResult) Body(lang *i18n.Manager) ActionResultBody {
	var body ActionResultBody
	if r.Message != nil {
		body.Message = &ActionMessageBody{
			Text:     lang.Get(r.Message.Text),
			Type:     r.Message.Type,
			Position: r.Message.Position,
		}
	}
	body.PersistentMessage = optText(lang, r.PersistentMessage)
	return body
}

// ActionSchemaData is the wire description of an action.
type ActionSchemaData struct {
	Title               string            `json:"title"`
	Description         *string           `json:"description"`
	ShortDescription    *string           `json:"short_description"`
	ConfirmationText    *string           `json:"confirmation_text"`
	BaseColor           *string           `json:"base_color"`
	Icon                *string           `json:"icon"`
	Variant             *string           `json:"variant"`
	AllowEmptySelection bool              `json:"allow_empty_selection"`
	FormSchema          *FieldsSchemaData `json:"form_schema"`
}

func (a Action) generateSchema(user User, lang *i18n.Manager) ActionSchemaData {
	title := a.Name
	if !a.Title.IsZero() {
		title = lang.Get(a.Title)
	}
	data := ActionSchemaData{
		Title:               title,
		Description:         optText(lang, a.Description),
		ShortDescription:    optText(lang, a.ShortDescription),
		ConfirmationText:    optText(lang, a.ConfirmationText),
		BaseColor:           optString(a.BaseColor),
		Icon:                optString(a.Icon),
		Variant:             optString(a.Variant),
		AllowEmptySelection: a.AllowEmptySelection,
	}
	if a.FormSchema != nil {
		form := a.FormSchema.GenerateSchema(user, lang)
		data.FormSchema = &form
	}
	return data
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (t *CategoryTable) action(name string) (Action, bool) {
	for _, a := range t.actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Actions returns the registered actions in declaration order.
func (t *CategoryTable) Actions() []Action {
	return append([]Action(nil), t.actions...)
}

// PerformAction runs the named action. Selection and form input are checked
// before the handler runs. Handler failures that are not already *APIError
// become user_action_error.
func (t *CategoryTable) PerformAction(ctx context.Context, name string, data ActionData, fc FieldContext) (result ActionResult, err error) {
	action, ok := t.action(name)
	if !ok {
		return ActionResult{}, NotFound(CodeActionNotFound,
			i18n.T(CodeActionNotFound).With(map[string]any{"action": name}))
	}

	if len(data.PKs) == 0 && !data.SendToAll && !action.AllowEmptySelection {
		return ActionResult{}, NewAPIError(http.StatusBadRequest, CodeEmptySelection, i18n.T(CodeEmptySelection))
	}

	req := ActionRequest{Data: data, Table: t, Context: fc}
	if action.FormSchema != nil {
		form, err := action.FormSchema.Deserialize(ctx, data.FormData, ActionTableAction, fc)
		if err != nil {
			return ActionResult{}, err
		}
		req.Form = form
	}

	defer func() {
		if r := recover(); r != nil {
			customLog.WithFields(logrus.Fields{"category": t.slug, "action": name}).Errorf("Admin: action panicked: %v", r)
			result, err = ActionResult{}, UserActionError(i18n.Raw(fmt.Sprint(r)))
		}
	}()

	result, err = action.Handler(ctx, req)
	if err != nil {
		if _, typed := AsAPIError(err); typed {
			return ActionResult{}, err
		}
		customLog.WithFields(logrus.Fields{
			"category": t.slug,
			"action":   name,
			"pks":      data.PKs,
		}).Warnf("Admin: action failed: %v", err)
		return ActionResult{}, UserActionError(i18n.Raw(err.Error())).WithCause(err)
	}
	return result, nil
}
