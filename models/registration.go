package models

// RegistrationRecord holds the identity and address details a user
// entered in the registration form. It is created once per verification
// attempt and treated as immutable after submission.
type RegistrationRecord struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD, no time component
	HouseNumber string `json:"house_number"`
	Street      string `json:"street"`
	FlatNumber  string `json:"flat_number,omitempty"`
	Postcode    string `json:"postcode"`
	City        string `json:"city"`
}
