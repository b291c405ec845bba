package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/form"
	"github.com/vietddude/topup/internal/form/schemas"
	"github.com/vietddude/topup/internal/infra/api"
)

var (
	newUser struct {
		username, email, fullName, phone string
		password, confirm, role          string
	}
	newProduct struct {
		gameID, name, description string
		price, currency, status   string
		stock                     int
	}
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a dashboard user",
	RunE: func(cmd *cobra.Command, args []string) error {
		values := form.Values{
			"username":        newUser.username,
			"email":           newUser.email,
			"fullName":        newUser.fullName,
			"phone":           newUser.phone,
			"password":        newUser.password,
			"confirmPassword": newUser.confirm,
			"role":            newUser.role,
		}
		var created domain.User
		unique := asyncCheck{field: "username", validate: usernameAvailable}
		err := submitForm(cmd.Context(), schemas.UserCreate(), values, func(ctx context.Context, v form.Values) error {
			var in domain.UserInput
			if err := schemas.Bind(v, &in); err != nil {
				return err
			}
			u, err := app.Services.Users.Create(ctx, in)
			if err != nil {
				return err
			}
			created = u
			return nil
		}, unique)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(), "Created user %s (%s).\n", created.Username, created.ID)
		return nil
	},
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a credit pack",
	RunE: func(cmd *cobra.Command, args []string) error {
		values := form.Values{
			"gameId":      newProduct.gameID,
			"name":        newProduct.name,
			"description": newProduct.description,
			"price":       newProduct.price,
			"currency":    newProduct.currency,
			"stock":       newProduct.stock,
			"status":      newProduct.status,
		}
		var created domain.Product
		err := submitForm(cmd.Context(), schemas.Product(), values, func(ctx context.Context, v form.Values) error {
			var in domain.ProductInput
			if err := schemas.Bind(v, &in); err != nil {
				return err
			}
			p, err := app.Services.Products.Create(ctx, in)
			if err != nil {
				return err
			}
			created = p
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(), "Created product %s (%s) at %s.\n", created.Name, created.ID, created.Price.StringFixed(2))
		return nil
	},
}

var productsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Validate a JSON array of products and create them in one bulk call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var rows []form.Values
		if err := json.Unmarshal(data, &rows); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if len(rows) == 0 {
			return errors.New("no products to import")
		}

		items := form.NewFieldArray(rows...)
		if !items.ValidateAll(schemas.Product()) {
			errs := items.Errors()
			idx := make([]int, 0, len(errs))
			for i := range errs {
				idx = append(idx, i)
			}
			sort.Ints(idx)
			w := newTable(stdout(), "ROW\tERROR")
			for _, i := range idx {
				fmt.Fprintf(w, "%d\t%s\n", i+1, errs[i])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("%d of %d rows invalid", len(errs), items.Len())
		}

		inputs := make([]any, 0, items.Len())
		for _, v := range items.Items() {
			var in domain.ProductInput
			if err := schemas.Bind(v, &in); err != nil {
				return err
			}
			inputs = append(inputs, in)
		}
		created, err := app.Services.Products.BulkCreate(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(), "Imported %d products.\n", len(created))
		return nil
	},
}

// asyncCheck is a remote lookup run against one field before submitting.
type asyncCheck struct {
	field    string
	validate form.AsyncValidator
}

// usernameAvailable fails when a user with the same username already exists.
func usernameAvailable(ctx context.Context, value any) error {
	name, _ := value.(string)
	page, err := app.Services.Users.GetPaginated(ctx, api.ListParams{Search: name, Limit: 20})
	if err != nil {
		return fmt.Errorf("Could not check username: %v", err)
	}
	for _, u := range page.Data {
		if strings.EqualFold(u.Username, name) {
			return errors.New("Username is already taken")
		}
	}
	return nil
}

// submitForm runs values through a form bound to schema, then the async
// checks, and calls submit when everything passes. Field errors are printed
// in schema order.
func submitForm(ctx context.Context, schema *form.RuleSchema, values form.Values, submit form.SubmitFunc, checks ...asyncCheck) error {
	f := form.New(schema, values, form.Options{
		Notifier: form.NotifierFunc(func(form.Level, string) {}),
		// One value per field, so there is no burst to wait out.
		Debouncer: form.NewDebouncer(time.Millisecond),
	})

	for _, c := range checks {
		// A field that fails its own rules is reported with the rest on submit.
		if !f.ValidateField(c.field) {
			continue
		}
		select {
		case <-f.ValidateFieldAsync(ctx, c.field, c.validate):
		case <-ctx.Done():
			return ctx.Err()
		}
		if _, failed := f.Errors()[c.field]; failed {
			return printFieldErrors(schema, f.Errors())
		}
	}

	err := f.HandleSubmit(ctx, submit)
	if !errors.Is(err, form.ErrValidation) {
		return err
	}
	return printFieldErrors(schema, f.Errors())
}

func printFieldErrors(schema *form.RuleSchema, errs map[string]string) error {
	w := newTable(stdout(), "FIELD\tERROR")
	for _, name := range fieldOrder(schema, errs) {
		fmt.Fprintf(w, "%s\t%s\n", name, errs[name])
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return fmt.Errorf("%d invalid field(s)", len(errs))
}

// fieldOrder lists the fields in errs, schema fields first.
func fieldOrder(schema *form.RuleSchema, errs map[string]string) []string {
	seen := make(map[string]bool, len(errs))
	var names []string
	for _, name := range schema.Fields() {
		if _, ok := errs[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range errs {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func init() {
	f := usersCreateCmd.Flags()
	f.StringVar(&newUser.username, "username", "", "login name")
	f.StringVar(&newUser.email, "email", "", "email address")
	f.StringVar(&newUser.fullName, "full-name", "", "display name")
	f.StringVar(&newUser.phone, "phone", "", "phone number")
	f.StringVar(&newUser.password, "password", "", "initial password")
	f.StringVar(&newUser.confirm, "confirm-password", "", "initial password, again")
	f.StringVar(&newUser.role, "role", string(domain.UserRoleSupport), "admin, manager or support")
	usersCmd.AddCommand(usersCreateCmd)

	f = productsCreateCmd.Flags()
	f.StringVar(&newProduct.gameID, "game", "", "game id")
	f.StringVar(&newProduct.name, "name", "", "product name")
	f.StringVar(&newProduct.description, "description", "", "description")
	f.StringVar(&newProduct.price, "price", "", "price, e.g. 4.99")
	f.StringVar(&newProduct.currency, "currency", "", "ISO currency code")
	f.IntVar(&newProduct.stock, "stock", 0, "initial stock")
	f.StringVar(&newProduct.status, "status", "", "active, inactive or out_of_stock")
	productsCmd.AddCommand(productsCreateCmd, productsImportCmd)
}
