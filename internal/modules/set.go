// SPDX-License-Identifier: AGPL-3.0-or-later
package modules

import (
	"context"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/argstore"
	"github.com/ohos-build/hb/internal/hberr"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/types"
)

const (
	argProductName = "product_name"
	argAll         = "all"
)

// SetModule stores product and parameter choices for later builds.
type SetModule struct {
	args     map[string]*args.Argument
	resolver *ArgResolver
	menu     Menu
	products ProductLister
	store    *argstore.Store
}

func NewSetModule(resolved map[string]*args.Argument, resolver *ArgResolver, menu Menu, products ProductLister, store *argstore.Store) *SetModule {
	return &SetModule{args: resolved, resolver: resolver, menu: menu, products: products, store: store}
}

func (m *SetModule) Workflow() types.Workflow        { return types.WorkflowSet }
func (m *SetModule) Args() map[string]*args.Argument { return m.args }

// SetProduct resolves the product_name argument.
func (m *SetModule) SetProduct(ctx context.Context) error {
	arg, err := requireArg(m, argProductName)
	if err != nil {
		return err
	}
	return m.resolver.ResolveArg(ctx, arg, m)
}

// SetParameter resolves the all argument.
func (m *SetModule) SetParameter(ctx context.Context) error {
	arg, err := requireArg(m, argAll)
	if err != nil {
		return err
	}
	return m.resolver.ResolveArg(ctx, arg, m)
}

// resolveProductName prompts for a product when none was given and stores
// the choice.
func resolveProductName(ctx context.Context, arg *args.Argument, m Module) error {
	sm, ok := m.(*SetModule)
	if !ok {
		return wrongModule("resolveProductName", m)
	}
	name := arg.String()
	if name == "" {
		if sm.menu == nil || sm.products == nil {
			return hberr.Config(hberr.CodeNotInitialized, "no product given and no product menu available")
		}
		products, err := sm.products.Products(ctx)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return hberr.Config(hberr.CodeSchemaIO, "no products configured")
		}
		options := make([]string, 0, len(products))
		for _, p := range products {
			options = append(options, p.Name)
		}
		name, err = sm.menu.Select(ctx, "Which product do you need?", options)
		if err != nil {
			return err
		}
	}
	arg.SetValue(name)
	logging.FromContext(ctx).Info("product selected", "product", name)
	if sm.store == nil {
		return nil
	}
	return sm.store.Persist(ctx, types.WorkflowSet, arg.Name(), name)
}

// resolveSetParameter resolves every other set argument when all is true.
func resolveSetParameter(ctx context.Context, arg *args.Argument, m Module) error {
	sm, ok := m.(*SetModule)
	if !ok {
		return wrongModule("resolveSetParameter", m)
	}
	if !arg.Bool() {
		return nil
	}
	for _, name := range sortedArgNames(sm.args) {
		if name == arg.Name() {
			continue
		}
		if err := sm.resolver.ResolveArg(ctx, sm.args[name], sm); err != nil {
			return err
		}
	}
	return nil
}
