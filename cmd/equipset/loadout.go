package main

import (
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/equipset/internal/config"
	"github.com/KirkDiggler/equipset/internal/orchestrators/equipment"
	"github.com/KirkDiggler/equipset/internal/redis"
	"github.com/KirkDiggler/equipset/internal/repositories/loadout"
)

var (
	redisAddr   string
	characterID string
)

var loadoutCmd = &cobra.Command{
	Use:   "loadout",
	Short: "Manage persisted loadouts",
}

var loadoutSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Resolve an inventory and persist the result",
	Long: `Save runs the same pipeline as resolve, then stores the inventory and
each group's equipped state label under the character's loadout key.`,
	RunE: runLoadoutSave,
}

var loadoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a character's stored loadout",
	RunE:  runLoadoutShow,
}

var loadoutDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a character's stored loadout",
	RunE:  runLoadoutDelete,
}

func init() {
	loadoutCmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "redis address")
	loadoutCmd.PersistentFlags().StringVar(&characterID, "character", "", "character ID")
	_ = loadoutCmd.MarkPersistentFlagRequired("character")

	loadoutSaveCmd.Flags().StringVar(&configPath, "config", "equipset.yaml", "rule configuration file")
	loadoutSaveCmd.Flags().StringArrayVar(&itemSpecs, "item", nil, "item to carry, as name:slot[:quantity] (repeatable)")
	loadoutSaveCmd.Flags().StringVar(&equipLabel, "equip", "", "state label to equip before saving")

	loadoutCmd.AddCommand(loadoutSaveCmd)
	loadoutCmd.AddCommand(loadoutShowCmd)
	loadoutCmd.AddCommand(loadoutDeleteCmd)
}

// loadDocumentForOrchestrator loads the rule configuration and forces
// immediate updates so one-shot CLI mutations resolve without a tick loop
func loadDocumentForOrchestrator() (*config.Document, error) {
	doc, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	doc.UpdateMode = "immediate"
	return doc, nil
}

func newLoadoutRepo() (loadout.Repository, error) {
	client, err := redis.NewClient(redisAddr, nil)
	if err != nil {
		return nil, err
	}
	return loadout.NewRedis(&loadout.RedisConfig{Client: client})
}

func runLoadoutSave(cmd *cobra.Command, args []string) error {
	doc, err := loadDocumentForOrchestrator()
	if err != nil {
		return err
	}
	repo, err := newLoadoutRepo()
	if err != nil {
		return err
	}

	svc, err := equipment.NewOrchestrator(&equipment.Config{
		Document:    doc,
		LoadoutRepo: repo,
		CharacterID: characterID,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, spec := range itemSpecs {
		name, slot, quantity, err := parseItemSpec(spec)
		if err != nil {
			return err
		}
		if _, err := svc.AddItem(ctx, &equipment.AddItemInput{
			ItemName: name,
			Slot:     slot,
			Quantity: quantity,
		}); err != nil {
			return err
		}
	}

	if equipLabel != "" {
		if _, err := svc.EquipByLabel(ctx, &equipment.EquipByLabelInput{
			Label:     equipLabel,
			Immediate: true,
		}); err != nil {
			return err
		}
	}

	out, err := svc.SaveLoadout(ctx, &equipment.SaveLoadoutInput{})
	if err != nil {
		return err
	}

	cmd.Printf("saved loadout for %s at %s\n", characterID, out.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runLoadoutShow(cmd *cobra.Command, args []string) error {
	repo, err := newLoadoutRepo()
	if err != nil {
		return err
	}

	out, err := repo.Get(cmd.Context(), loadout.GetInput{CharacterID: characterID})
	if err != nil {
		return err
	}
	stored := out.Loadout

	cmd.Printf("loadout for %s (updated %s)\n", stored.CharacterID, stored.UpdatedAt.Format("2006-01-02 15:04:05"))
	for _, q := range stored.Quantities {
		cmd.Printf("  item %d x%d\n", q.ItemID, q.Quantity)
	}
	for _, p := range stored.Placements {
		cmd.Printf("  item %d in slot %d\n", p.ItemID, p.Slot)
	}
	for _, g := range stored.Groups {
		label := g.ActiveLabel
		if label == "" {
			label = "(nothing equipped)"
		}
		cmd.Printf("  group %s: %s\n", g.Category, label)
	}
	return nil
}

func runLoadoutDelete(cmd *cobra.Command, args []string) error {
	repo, err := newLoadoutRepo()
	if err != nil {
		return err
	}

	if _, err := repo.Delete(cmd.Context(), loadout.DeleteInput{CharacterID: characterID}); err != nil {
		return err
	}
	cmd.Printf("deleted loadout for %s\n", characterID)
	return nil
}
