package domain

// WorkoutProfile is the flattened user profile forwarded to the generation
// service. The field set is owned by the generation service contract; the
// gateway only relies on Email being present and well-formed.
type WorkoutProfile struct {
	FirstName              string `json:"firstname,omitempty"`
	Email                  string `json:"email" valid:"required,email"`
	Age                    int    `json:"age" valid:"required,range(18|120)"`
	Gender                 string `json:"gender" valid:"required,in(male|female|other)"`
	Level                  string `json:"level" valid:"required,in(beginner|intermediate|advanced)"`
	Type                   string `json:"type" valid:"required"`
	Goal                   string `json:"goal" valid:"required"`
	Frequency              int    `json:"frequency" valid:"required,range(2|6)"`
	Days                   string `json:"days,omitempty"`
	Height                 string `json:"height,omitempty"`
	Weight                 string `json:"weight,omitempty"`
	Duration               int    `json:"duration,omitempty"`
	SessionDurationMinutes int    `json:"session_duration_minutes,omitempty"`
	Equipment              string `json:"equipment,omitempty"`
}

type StoreEmailRequest struct {
	Email string `json:"email" valid:"required,email"`
}
