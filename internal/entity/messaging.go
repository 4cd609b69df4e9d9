package entity

// TwilioInbound is the subset of the Twilio messaging webhook form we read
type TwilioInbound struct {
	MessageSID string
	From       string
	To         string
	Body       string
}

// TwilioMessageResponse is returned by the Twilio Messages API
type TwilioMessageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// TwilioPhoneNumberResponse is returned by the IncomingPhoneNumbers API
type TwilioPhoneNumberResponse struct {
	SID    string `json:"sid"`
	SmsURL string `json:"sms_url"`
}
