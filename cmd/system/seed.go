package system

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/medibook_backend/internal/seed"
	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/pkg/database"
	"github.com/Alijeyrad/medibook_backend/pkg/util/password"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo specialties, doctors and patients",
		Long: `Load the demo catalog: 8 specialties, 6 doctors and 2 patients.

Doctors log in with <first name>@hospital.com / ` + seed.DemoDoctorPassword + `,
patients with their phone number / ` + seed.DemoPatientPassword + `.
Existing rows are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Database.IsMemory() {
				fmt.Println("Memory driver selected, the server seeds itself on start.")
				return nil
			}

			client, err := database.NewRepoClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer client.Close()

			// Registration needs neither sessions nor tokens.
			ids := identity.New(client, nil, nil, password.FromConfig(cfg.Password), cfg)

			res, err := seed.Run(context.Background(), client, ids)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d specialties, %d doctors, %d patients.\n", res.Specialties, res.Doctors, res.Patients)
			return nil
		},
	}

	return cmd
}
