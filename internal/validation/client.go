package validation

import (
	"reflect"
	"sort"
	"strings"
)

// ClientInput is a client registration as typed in by the user.
type ClientInput struct {
	Name        string `json:"name" validate:"required,max=256"`
	RedirectURI string `json:"redirect_uri" validate:"required,url"`
	ImageURI    string `json:"image_uri" validate:"omitempty,url"`
	Whitelisted string `json:"whitelisted" validate:"omitempty,yesno"`
	CanGrant    string `json:"can_grant" validate:"omitempty,yesno"`
}

var booleanProperties = map[string]bool{
	"whitelisted": true,
	"can_grant":   true,
}

// propertyRules maps updatable properties to their validation tags, taken
// from the ClientInput struct tags.
var propertyRules = func() map[string]string {
	rules := map[string]string{}
	t := reflect.TypeOf(ClientInput{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		rules[f.Tag.Get("json")] = f.Tag.Get("validate")
	}
	return rules
}()

// Properties lists the client properties that can be set.
func Properties() []string {
	out := make([]string, 0, len(propertyRules))
	for p := range propertyRules {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ValidateClient checks a registration.
func ValidateClient(in ClientInput) error {
	return translate(instance().Struct(in), "")
}

// ValidateClientID checks that id looks like a client id (16 hex characters).
func ValidateClientID(id string) error {
	return translate(instance().Var(id, "required,len=16,hexadecimal"), "clientId")
}

// UpdateProperty validates a single property change and returns it in the
// form the server expects, with boolean properties converted.
func UpdateProperty(prop, value string) (map[string]any, error) {
	rule, ok := propertyRules[prop]
	if !ok {
		var errs Errors
		errs.Add(prop, "is not an updatable property")
		return nil, errs
	}
	// an update always sets a value
	rule = "required," + strings.TrimPrefix(rule, "omitempty,")
	if err := translate(instance().Var(value, rule), prop); err != nil {
		return nil, err
	}
	if booleanProperties[prop] {
		return map[string]any{prop: Truthy(value)}, nil
	}
	return map[string]any{prop: value}, nil
}
