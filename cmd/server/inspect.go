package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/mmynk/taxava/internal/models"
)

const userFlag = "user"

var inspectFlags = map[string]cobraflags.Flag{
	userFlag: &cobraflags.StringFlag{
		Name:  userFlag,
		Value: "",
		Usage: "ID of the user to inspect (required)",
	},
	storeFlag: &cobraflags.StringFlag{
		Name:  storeFlag,
		Value: "",
		Usage: "Overlay store backend: sqlite or redis",
	},
	dbPathFlag: &cobraflags.StringFlag{
		Name:  dbPathFlag,
		Value: "",
		Usage: "Path of the sqlite overlay database",
	},
	seedDirFlag: &cobraflags.StringFlag{
		Name:  seedDirFlag,
		Value: "",
		Usage: "Directory replacing the bundled seed",
	},
}

// userView is what inspect prints for one user.
type userView struct {
	User      models.User   `json:"user"`
	Companies []companyView `json:"companies"`
}

// companyView is one owned company with its properties.
type companyView struct {
	models.Company
	Properties []models.Property `json:"properties"`
}

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the reconciled companies and properties of a user as JSON",
		Long: `Print a user together with the companies they own and each company's
properties, as seen after merging the seed data with the local overlay.

Examples:
  taxava inspect --user 1
  taxava inspect --user 4 --store redis`,
		RunE: inspectCommand,
	}
	cobraflags.RegisterMap(cmd, inspectFlags)
	return cmd
}

func inspectCommand(cmd *cobra.Command, _ []string) error {
	userID, err := strconv.Atoi(inspectFlags[userFlag].GetString())
	if err != nil || userID <= 0 {
		return fmt.Errorf("--%s must be a positive user ID", userFlag)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	user, err := cat.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	companies, err := cat.GetCompaniesByUser(ctx, userID)
	if err != nil {
		return err
	}
	view := userView{User: user.Public(), Companies: make([]companyView, 0, len(companies))}
	for _, company := range companies {
		properties, err := cat.GetPropertiesByCompany(ctx, company.ID)
		if err != nil {
			return err
		}
		view.Companies = append(view.Companies, companyView{Company: company, Properties: properties})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
