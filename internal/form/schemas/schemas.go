// Package schemas holds the validation schemas of the admin dashboard forms.
package schemas

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/form"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9 ]{8,15}$`)
)

// UserCreate validates the new-user form.
func UserCreate() *form.RuleSchema {
	return form.NewSchema().
		Field("username",
			form.Required("Username is required"),
			form.MinLength(3, "Username must be at least 3 characters"),
			form.MaxLength(50, "Username must be at most 50 characters"),
			form.Pattern(usernamePattern, "Username can only contain letters, numbers and underscores")).
		Field("email",
			form.Required("Email is required"),
			form.Email("Invalid email address")).
		Field("fullName", form.Optional(form.MaxLength(100, "Full name must be at most 100 characters"))).
		Field("phone", form.Optional(form.Pattern(phonePattern, "Invalid phone number"))).
		Field("password",
			form.Required("Password is required"),
			form.MinLength(8, "Password must be at least 8 characters")).
		Field("confirmPassword", form.Required("Please confirm the password")).
		Field("role", form.OneOf("Invalid role",
			string(domain.UserRoleAdmin), string(domain.UserRoleManager), string(domain.UserRoleSupport))).
		Refine("confirmPassword", "Passwords do not match", func(v form.Values) bool {
			return v["password"] == v["confirmPassword"]
		})
}

// UserUpdate validates the edit-user form. Password is optional.
func UserUpdate() *form.RuleSchema {
	return form.NewSchema().
		Field("email",
			form.Required("Email is required"),
			form.Email("Invalid email address")).
		Field("fullName", form.Optional(form.MaxLength(100, "Full name must be at most 100 characters"))).
		Field("phone", form.Optional(form.Pattern(phonePattern, "Invalid phone number"))).
		Field("password", form.Optional(form.MinLength(8, "Password must be at least 8 characters"))).
		Field("role", form.Optional(form.OneOf("Invalid role",
			string(domain.UserRoleAdmin), string(domain.UserRoleManager),
			string(domain.UserRoleSupport), string(domain.UserRoleCustomer))))
}

func Product() *form.RuleSchema {
	return form.NewSchema().
		Field("name",
			form.Required("Product name is required"),
			form.MaxLength(120, "Product name must be at most 120 characters")).
		Field("gameId", form.Required("Game is required")).
		Field("price",
			form.Required("Price is required"),
			form.Min(decimal.Zero, "Price must be a positive number")).
		Field("stock",
			form.Required("Stock is required"),
			form.Min(decimal.Zero, "Stock cannot be negative")).
		Field("status", form.Optional(form.OneOf("Invalid status",
			string(domain.ProductStatusActive), string(domain.ProductStatusInactive),
			string(domain.ProductStatusOutOfStock))))
}

func Game() *form.RuleSchema {
	return form.NewSchema().
		Field("name", form.Required("Game name is required")).
		Field("slug",
			form.Required("Slug is required"),
			form.Pattern(slugPattern, "Slug can only contain lowercase letters, numbers and dashes")).
		Field("imageUrl", form.Optional(form.URL("Invalid image URL")))
}

func Reseller() *form.RuleSchema {
	return form.NewSchema().
		Field("companyName", form.Required("Company name is required")).
		Field("email",
			form.Required("Email is required"),
			form.Email("Invalid email address")).
		Field("phone", form.Optional(form.Pattern(phonePattern, "Invalid phone number"))).
		Field("discountPercent",
			form.Min(decimal.Zero, "Discount must be between 0 and 100"),
			form.Max(decimal.NewFromInt(100), "Discount must be between 0 and 100"))
}

func MessageReply() *form.RuleSchema {
	return form.NewSchema().
		Field("body",
			form.Required("Reply cannot be empty"),
			form.MaxLength(2000, "Reply must be at most 2000 characters"))
}

// Bind decodes form values into an input struct using its JSON tags.
// Fields without a matching tag, such as confirmPassword, are ignored.
func Bind(values form.Values, out any) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode form values: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode form values: %w", err)
	}
	return nil
}
