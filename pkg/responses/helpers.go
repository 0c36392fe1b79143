package responses

// System intents requested by helpers.
const (
	IntentText                    = "actions.intent.TEXT"
	IntentPermission              = "actions.intent.PERMISSION"
	IntentSignIn                  = "actions.intent.SIGN_IN"
	IntentConfirmation            = "actions.intent.CONFIRMATION"
	IntentDateTime                = "actions.intent.DATETIME"
	IntentPlace                   = "actions.intent.PLACE"
	IntentDeliveryAddress         = "actions.intent.DELIVERY_ADDRESS"
	IntentTransactionRequirements = "actions.intent.TRANSACTION_REQUIREMENTS_CHECK"
	IntentTransactionDecision     = "actions.intent.TRANSACTION_DECISION"
	IntentNewSurface              = "actions.intent.NEW_SURFACE"
	IntentRegisterUpdate          = "actions.intent.REGISTER_UPDATE"
	IntentOption                  = "actions.intent.OPTION"
)

const typePrefix = "type.googleapis.com/google.actions.v2."

func valueSpec(name string, fields map[string]any) map[string]any {
	out := map[string]any{"@type": typePrefix + name}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// soloHelper is embedded by helpers that may be sent without a simple response.
// Its methods use pointer receivers so only *T helpers are fragments.
type soloHelper struct{}

func (*soloHelper) Kind() FragmentKind { return FragmentKindHelper }
func (*soloHelper) fragment()          {}
func (*soloHelper) Solo() bool         { return true }

// Permission asks for user information (name, location, update permission).
type Permission struct {
	soloHelper
	Context     string
	Permissions []string
}

// Permission names.
const (
	PermissionName          = "NAME"
	PermissionDevicePrecise = "DEVICE_PRECISE_LOCATION"
	PermissionDeviceCoarse  = "DEVICE_COARSE_LOCATION"
	PermissionUpdate        = "UPDATE"
)

func (p *Permission) ExpectedIntent() ExpectedIntent {
	fields := map[string]any{"permissions": p.Permissions}
	if p.Context != "" {
		fields["optContext"] = p.Context
	}
	return ExpectedIntent{Intent: IntentPermission, InputValueData: valueSpec("PermissionValueSpec", fields)}
}

// UpdatePermission asks for permission to push updates for an intent.
type UpdatePermission struct {
	soloHelper
	Intent    string
	Arguments []map[string]any
}

func (u *UpdatePermission) ExpectedIntent() ExpectedIntent {
	update := map[string]any{"intent": u.Intent}
	if len(u.Arguments) > 0 {
		update["arguments"] = u.Arguments
	}
	return ExpectedIntent{Intent: IntentPermission, InputValueData: valueSpec("PermissionValueSpec", map[string]any{
		"permissions":               []string{PermissionUpdate},
		"updatePermissionValueSpec": update,
	})}
}

// SignIn starts account linking.
type SignIn struct {
	soloHelper
	Context string
}

func (s *SignIn) ExpectedIntent() ExpectedIntent {
	fields := map[string]any{}
	if s.Context != "" {
		fields["optContext"] = s.Context
	}
	return ExpectedIntent{Intent: IntentSignIn, InputValueData: valueSpec("SignInValueSpec", fields)}
}

// Confirmation asks a yes/no question.
type Confirmation struct {
	soloHelper
	Prompt string
}

func (c *Confirmation) ExpectedIntent() ExpectedIntent {
	return ExpectedIntent{Intent: IntentConfirmation, InputValueData: valueSpec("ConfirmationValueSpec", map[string]any{
		"dialogSpec": map[string]any{"requestConfirmationText": c.Prompt},
	})}
}

// DateTime asks for a date and time.
type DateTime struct {
	soloHelper
	InitialPrompt string
	DatePrompt    string
	TimePrompt    string
}

func (d *DateTime) ExpectedIntent() ExpectedIntent {
	spec := map[string]any{}
	if d.InitialPrompt != "" {
		spec["requestDatetimeText"] = d.InitialPrompt
	}
	if d.DatePrompt != "" {
		spec["requestDateText"] = d.DatePrompt
	}
	if d.TimePrompt != "" {
		spec["requestTimeText"] = d.TimePrompt
	}
	return ExpectedIntent{Intent: IntentDateTime, InputValueData: valueSpec("DateTimeValueSpec", map[string]any{"dialogSpec": spec})}
}

// Place asks for a location.
type Place struct {
	soloHelper
	Prompt  string
	Context string
}

func (p *Place) ExpectedIntent() ExpectedIntent {
	ext := map[string]any{
		"@type":         typePrefix + "PlaceValueSpec.PlaceDialogSpec",
		"requestPrompt": p.Prompt,
	}
	if p.Context != "" {
		ext["permissionContext"] = p.Context
	}
	return ExpectedIntent{Intent: IntentPlace, InputValueData: valueSpec("PlaceValueSpec", map[string]any{
		"dialogSpec": map[string]any{"extension": ext},
	})}
}

// DeliveryAddress asks for a delivery address.
type DeliveryAddress struct {
	soloHelper
	Reason string
}

func (d *DeliveryAddress) ExpectedIntent() ExpectedIntent {
	return ExpectedIntent{Intent: IntentDeliveryAddress, InputValueData: valueSpec("DeliveryAddressValueSpec", map[string]any{
		"addressOptions": map[string]any{"reason": d.Reason},
	})}
}

// TransactionRequirements checks whether the user can transact.
type TransactionRequirements struct {
	soloHelper
	Spec map[string]any
}

func (t *TransactionRequirements) ExpectedIntent() ExpectedIntent {
	return ExpectedIntent{Intent: IntentTransactionRequirements, InputValueData: valueSpec("TransactionRequirementsCheckSpec", t.Spec)}
}

// TransactionDecision proposes an order to the user.
type TransactionDecision struct {
	soloHelper
	Spec map[string]any
}

func (t *TransactionDecision) ExpectedIntent() ExpectedIntent {
	return ExpectedIntent{Intent: IntentTransactionDecision, InputValueData: valueSpec("TransactionDecisionValueSpec", t.Spec)}
}

// NewSurface asks to continue the conversation on another device.
type NewSurface struct {
	soloHelper
	Context      string
	Notification string
	Capabilities []string
}

func (n *NewSurface) ExpectedIntent() ExpectedIntent {
	return ExpectedIntent{Intent: IntentNewSurface, InputValueData: valueSpec("NewSurfaceValueSpec", map[string]any{
		"context":           n.Context,
		"notificationTitle": n.Notification,
		"capabilities":      n.Capabilities,
	})}
}

// RegisterUpdate registers a routine or daily update for an intent.
type RegisterUpdate struct {
	soloHelper
	Intent    string
	Arguments []map[string]any
	Frequency string
}

func (r *RegisterUpdate) ExpectedIntent() ExpectedIntent {
	fields := map[string]any{
		"intent": r.Intent,
		"triggerContext": map[string]any{
			"timeContext": map[string]any{"frequency": r.Frequency},
		},
	}
	if len(r.Arguments) > 0 {
		fields["arguments"] = r.Arguments
	}
	return ExpectedIntent{Intent: IntentRegisterUpdate, InputValueData: valueSpec("RegisterUpdateValueSpec", fields)}
}

// OptionInfo identifies a selectable option.
type OptionInfo struct {
	Key      string   `json:"key"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// OptionItem is one entry of a List or Carousel.
type OptionItem struct {
	OptionInfo  OptionInfo `json:"optionInfo"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Image       *Image     `json:"image,omitempty"`
}

// optionHelper is embedded by selection helpers, which need a simple response.
type optionHelper struct{}

func (*optionHelper) Kind() FragmentKind { return FragmentKindHelper }
func (*optionHelper) fragment()          {}
func (*optionHelper) Solo() bool         { return false }

// List asks the user to pick one option from a vertical list.
type List struct {
	optionHelper
	Title string
	Items []OptionItem
}

func (l *List) ExpectedIntent() ExpectedIntent {
	sel := map[string]any{"items": l.Items}
	if l.Title != "" {
		sel["title"] = l.Title
	}
	return ExpectedIntent{Intent: IntentOption, InputValueData: valueSpec("OptionValueSpec", map[string]any{"listSelect": sel})}
}

// Carousel asks the user to pick one option from a horizontal carousel.
type Carousel struct {
	optionHelper
	Items               []OptionItem
	ImageDisplayOptions string
}

func (c *Carousel) ExpectedIntent() ExpectedIntent {
	sel := map[string]any{"items": c.Items}
	if c.ImageDisplayOptions != "" {
		sel["imageDisplayOptions"] = c.ImageDisplayOptions
	}
	return ExpectedIntent{Intent: IntentOption, InputValueData: valueSpec("OptionValueSpec", map[string]any{"carouselSelect": sel})}
}

var (
	_ Helper = (*Permission)(nil)
	_ Helper = (*UpdatePermission)(nil)
	_ Helper = (*SignIn)(nil)
	_ Helper = (*Confirmation)(nil)
	_ Helper = (*DateTime)(nil)
	_ Helper = (*Place)(nil)
	_ Helper = (*DeliveryAddress)(nil)
	_ Helper = (*TransactionRequirements)(nil)
	_ Helper = (*TransactionDecision)(nil)
	_ Helper = (*NewSurface)(nil)
	_ Helper = (*RegisterUpdate)(nil)
	_ Helper = (*List)(nil)
	_ Helper = (*Carousel)(nil)
)
