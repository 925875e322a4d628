package escrow

import (
	"context"
	"slices"
)

// registerBeneficiary links user under beneficiary unless already linked.
// Lists are expected to stay short, so a linear scan is enough. Links are
// never removed.
func registerBeneficiary(ctx context.Context, repo BeneficiaryRepository, beneficiary, user string) error {
	users, err := repo.Users(ctx, beneficiary)
	if err != nil {
		return err
	}
	if slices.Contains(users, user) {
		return nil
	}
	return repo.Append(ctx, beneficiary, user)
}
