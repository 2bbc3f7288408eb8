package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conti/internal/core"
)

func TestCategoryService(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	ana := app.signUp(t, "ana@example.com", "Ana")
	bea := app.signUp(t, "bea@example.com", "Bea")

	_, err := app.categories.Create(ctx, ana.ID, core.CategoryInput{Name: "", Icon: "x", Color: "red"})
	assert.ErrorIs(t, err, core.ErrValidation)

	pets, err := app.categories.Create(ctx, ana.ID, core.CategoryInput{Name: " Pets ", Icon: "🐶", Color: "#abc"})
	require.NoError(t, err)
	assert.Equal(t, "Pets", pets.Name)

	beaCats, err := app.categories.List(ctx, bea.ID)
	require.NoError(t, err)
	assert.Len(t, beaCats, 10, "only defaults before linking")

	app.link(t, ana, bea)

	beaCats, err = app.categories.List(ctx, bea.ID)
	require.NoError(t, err)
	assert.Len(t, beaCats, 11, "partner's category becomes visible")

	_, err = app.categories.Update(ctx, bea.ID, pets.ID, core.CategoryInput{Name: "Mine", Icon: "🐶", Color: "#abc"})
	assert.ErrorIs(t, err, core.ErrForbidden)
	_, err = app.categories.Update(ctx, ana.ID, "cat-food", core.CategoryInput{Name: "Food", Icon: "🍔", Color: "#abc"})
	assert.ErrorIs(t, err, core.ErrForbidden, "defaults are immutable")

	updated, err := app.categories.Update(ctx, ana.ID, pets.ID, core.CategoryInput{Name: "Pet care", Icon: "🐾", Color: "#aabbcc"})
	require.NoError(t, err)
	assert.Equal(t, "Pet care", updated.Name)

	vet, err := app.categories.CreateSubcategory(ctx, ana.ID, core.SubcategoryInput{CategoryID: pets.ID, Name: "Vet", Icon: "💉", Color: "#123"})
	require.NoError(t, err)
	_, err = app.categories.CreateSubcategory(ctx, bea.ID, core.SubcategoryInput{CategoryID: pets.ID, Name: "Food", Icon: "🦴", Color: "#123"})
	assert.ErrorIs(t, err, core.ErrForbidden)

	subs, err := app.categories.ListSubcategories(ctx, bea.ID, pets.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, vet.ID, subs[0].ID)

	// Bea spends in Ana's category; Ana can then no longer delete it.
	in := expenseInput(1000, "2024-03-01")
	in.CategoryID = pets.ID
	in.SubcategoryID = vet.ID
	e, err := app.expenses.Create(ctx, bea.ID, in)
	require.NoError(t, err)

	assert.ErrorIs(t, app.categories.DeleteSubcategory(ctx, ana.ID, vet.ID), core.ErrConflict)
	assert.ErrorIs(t, app.categories.Delete(ctx, ana.ID, pets.ID), core.ErrConflict)

	// Soft-deleted expenses still count as usage.
	require.NoError(t, app.expenses.Delete(ctx, bea.ID, e.ID))
	assert.ErrorIs(t, app.categories.Delete(ctx, ana.ID, pets.ID), core.ErrConflict)

	spare, err := app.categories.Create(ctx, ana.ID, core.CategoryInput{Name: "Spare", Icon: "📦", Color: "#000"})
	require.NoError(t, err)
	_, err = app.categories.CreateSubcategory(ctx, ana.ID, core.SubcategoryInput{CategoryID: spare.ID, Name: "Box", Icon: "📦", Color: "#000"})
	require.NoError(t, err)
	assert.ErrorIs(t, app.categories.Delete(ctx, bea.ID, spare.ID), core.ErrForbidden)
	require.NoError(t, app.categories.Delete(ctx, ana.ID, spare.ID))

	subs, err = app.categories.ListSubcategories(ctx, ana.ID, spare.ID)
	require.NoError(t, err)
	assert.Empty(t, subs, "subcategories cascade")
}
