package farmer

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrifair/service-rental/pkg/domain"
)

// placeholderPhonePrefix marks auto-provisioned profiles whose owner has
// not supplied a real phone number yet.
const placeholderPhonePrefix = "+000000"

// Farmer is the aggregate root for a marketplace participant. The email is
// the link to the authenticated identity: the directory resolves a JWT
// subject to a farmer by email and provisions a placeholder profile when
// none exists.
type Farmer struct {
	id         uuid.UUID
	firstName  string
	secondName string
	email      string
	phoneNo    string
	county     string
	localArea  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewFarmer creates a farmer profile with validated fields.
func NewFarmer(firstName, secondName, email, phoneNo, county, localArea string) (*Farmer, error) {
	if firstName == "" {
		return nil, domain.NewValidationError("first name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if phoneNo == "" {
		phoneNo = placeholderPhone(email)
	}
	if county == "" {
		county = "Not Set"
	}
	if localArea == "" {
		localArea = "Not Set"
	}

	now := time.Now().UTC()
	return &Farmer{
		id:         uuid.New(),
		firstName:  firstName,
		secondName: secondName,
		email:      strings.ToLower(email),
		phoneNo:    phoneNo,
		county:     county,
		localArea:  localArea,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// NewProvisionalFarmer builds a placeholder profile for an authenticated
// identity with no farmer record yet. The first name defaults to the email
// local part and contact fields get unique placeholders.
func NewProvisionalFarmer(identity string) (*Farmer, error) {
	name := identity
	if at := strings.Index(identity, "@"); at > 0 {
		name = identity[:at]
	}
	return NewFarmer(name, "", identity, "", "", "")
}

// Reconstruct rebuilds a Farmer from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	firstName, secondName, email, phoneNo, county, localArea string,
	version int64,
	createdAt, updatedAt time.Time,
) *Farmer {
	return &Farmer{
		id:         id,
		firstName:  firstName,
		secondName: secondName,
		email:      email,
		phoneNo:    phoneNo,
		county:     county,
		localArea:  localArea,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

// ID returns the farmer's unique identifier.
func (f *Farmer) ID() uuid.UUID { return f.id }

// FirstName returns the farmer's first name.
func (f *Farmer) FirstName() string { return f.firstName }

// SecondName returns the farmer's second name.
func (f *Farmer) SecondName() string { return f.secondName }

// Email returns the farmer's email, the key linking to the auth identity.
func (f *Farmer) Email() string { return f.email }

// PhoneNo returns the contact phone number.
func (f *Farmer) PhoneNo() string { return f.phoneNo }

// County returns the farmer's county.
func (f *Farmer) County() string { return f.county }

// LocalArea returns the farmer's local area.
func (f *Farmer) LocalArea() string { return f.localArea }

// Version returns the entity version for optimistic locking.
func (f *Farmer) Version() int64 { return f.version }

// CreatedAt returns the creation timestamp.
func (f *Farmer) CreatedAt() time.Time { return f.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (f *Farmer) UpdatedAt() time.Time { return f.updatedAt }

// HasPlaceholderPhone reports whether the phone number was auto-generated.
func (f *Farmer) HasPlaceholderPhone() bool {
	return strings.HasPrefix(f.phoneNo, placeholderPhonePrefix)
}

// --- Behavior ---

// UpdateProfile applies partial edits: empty fields and placeholder values
// leave the stored data untouched.
func (f *Farmer) UpdateProfile(firstName, secondName, phoneNo, county, localArea string) {
	if firstName != "" {
		f.firstName = firstName
	}
	if secondName != "" {
		f.secondName = secondName
	}
	if phoneNo != "" && !strings.HasPrefix(phoneNo, placeholderPhonePrefix) {
		f.phoneNo = phoneNo
	}
	if county != "" && county != "Not Set" {
		f.county = county
	}
	if localArea != "" && localArea != "Not Set" {
		f.localArea = localArea
	}
	f.version++
	f.updatedAt = time.Now().UTC()
}

// placeholderPhone derives a stable, unique-enough placeholder from the
// email so the phone uniqueness constraint holds for provisional profiles.
func placeholderPhone(email string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(email)))
	return fmt.Sprintf("%s%07d", placeholderPhonePrefix, h.Sum32()%10000000)
}
