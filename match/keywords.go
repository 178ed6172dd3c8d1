package match

import "github.com/hazyhaar/formfill/profile"

// keywords maps each built-in profile attribute to the label/attribute
// fragments that identify it. All entries are lower-case and normalized the
// same way descriptor search text is (punctuation collapsed to spaces).
//
// Ordering inside a list does not matter; scoring sums the lengths of every
// matched keyword.
var keywords = map[string][]string{
	profile.KeyFullName: {
		"full name", "fullname", "your name", "applicant name", "name",
		"candidate name", "complete name",
	},
	profile.KeyFirstName: {
		"first name", "firstname", "given name", "forename", "fname",
	},
	profile.KeyLastName: {
		"last name", "lastname", "surname", "family name", "lname",
	},
	profile.KeyEmail: {
		"email", "e mail", "mail id", "email address", "correo",
	},
	profile.KeyPhone: {
		"phone", "mobile", "telephone", "contact number", "cell", "whatsapp",
		"phone number", "mobile number", "tel",
	},
	profile.KeyIDNumber: {
		"id number", "identification", "national id", "passport", "student id",
		"registration number", "roll number", "enrollment", "employee id",
		"id no", "reg no",
	},
	profile.KeyDateOfBirth: {
		"date of birth", "birth date", "birthdate", "birthday", "dob", "born",
	},
	profile.KeyGender: {
		"gender", "sex",
	},
	profile.KeyDegree: {
		"degree", "qualification", "education", "course", "major", "branch",
		"program", "stream",
	},
	profile.KeyCampus: {
		"campus", "university", "college", "school", "institution",
		"institute", "affiliation",
	},
	profile.KeyAddress: {
		"address", "street", "address line",
	},
	profile.KeyCity: {
		"city", "town", "locality",
	},
	profile.KeyPostalCode: {
		"postal code", "zip code", "zipcode", "zip", "pincode", "pin code",
		"postcode",
	},
	profile.KeyCountry: {
		"country", "nation", "nationality",
	},
	profile.KeyCompany: {
		"company", "organization", "organisation", "employer", "firm",
		"workplace",
	},
	profile.KeyJobTitle: {
		"job title", "designation", "position", "occupation", "profession",
		"role",
	},
}

// Keywords returns the keyword list for a built-in attribute. Exposed so
// callers can extend matching diagnostics; the slice must not be mutated.
func Keywords(dataKey string) []string {
	return keywords[dataKey]
}
