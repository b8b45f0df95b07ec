package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/equipset/internal/config"
)

var (
	configPath string
	itemSpecs  []string
	equipLabel string
	equipForce bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve an inventory against a rule configuration",
	Long: `Resolve loads a rule configuration, fills the inventory from --item flags,
runs a resolution pass, and prints every group's item sets.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&configPath, "config", "equipset.yaml", "rule configuration file")
	resolveCmd.Flags().StringArrayVar(&itemSpecs, "item", nil, "item to carry, as name:slot[:quantity] (repeatable)")
	resolveCmd.Flags().StringVar(&equipLabel, "equip", "", "state label to equip after resolution")
	resolveCmd.Flags().BoolVar(&equipForce, "force", false, "equip even when the set cannot normally be switched to")
}

func runResolve(cmd *cobra.Command, args []string) error {
	doc, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	engine, err := config.Build(doc, nil)
	if err != nil {
		return err
	}

	if err := fillStore(engine, itemSpecs); err != nil {
		return err
	}
	engine.Manager.UpdateItemSets()

	if equipLabel != "" {
		if !engine.Manager.EquipByLabel(equipLabel, equipForce, true) {
			return fmt.Errorf("could not equip %q", equipLabel)
		}
	}

	printGroups(cmd, engine)
	return nil
}

// parseItemSpec splits a name:slot[:quantity] flag value
func parseItemSpec(spec string) (name string, slot, quantity int, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, 0, fmt.Errorf("invalid item spec %q (expected name:slot[:quantity])", spec)
	}

	slot, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid slot in %q: %w", spec, err)
	}
	quantity = 1
	if len(parts) == 3 {
		quantity, err = strconv.Atoi(parts[2])
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid quantity in %q: %w", spec, err)
		}
	}
	return parts[0], slot, quantity, nil
}

func fillStore(engine *config.Engine, specs []string) error {
	for _, spec := range specs {
		name, slot, quantity, err := parseItemSpec(spec)
		if err != nil {
			return err
		}

		item := engine.Item(name)
		if item == nil {
			return fmt.Errorf("unknown item %q", name)
		}
		if _, err := engine.Store.Pickup(item, slot, quantity); err != nil {
			return fmt.Errorf("could not pick up %q: %w", name, err)
		}
	}
	return nil
}

func printGroups(cmd *cobra.Command, engine *config.Engine) {
	for _, group := range engine.Manager.Groups() {
		cmd.Printf("group %d (%s) active=%d next=%d default=%d\n",
			group.Index(), group.CategoryName(),
			group.ActiveIndex(), group.NextIndex(), group.DefaultIndex(),
		)
		for idx, set := range group.ItemSets() {
			marker := " "
			if set.Active() {
				marker = "*"
			}
			names := make([]string, 0, len(set.Items()))
			for _, item := range set.Items() {
				if item == nil {
					names = append(names, "-")
					continue
				}
				names = append(names, item.Name)
			}
			cmd.Printf("  [%d]%s %-30s slots=[%s]\n", idx, marker, set.State(), strings.Join(names, " "))
		}
	}
}
