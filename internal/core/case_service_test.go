package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebwils/Smart-Juris/internal/store"
)

func TestCaseService_CreateAndAttach(t *testing.T) {
	f := newFixture(t)
	cases := f.workspace.Cases
	ctx := context.Background()

	c, err := cases.Create(ctx, "Dupont SARL", "Litige X", "Retard de livraison")
	require.NoError(t, err)
	assert.Equal(t, store.CaseStatusOpen, c.Status)
	assert.Empty(t, c.Documents)
	assert.Empty(t, c.AIResponses)
	assert.True(t, c.DateCreated.Equal(c.DateUpdated))

	updated, err := cases.AttachDocument(ctx, c.ID, "Contrat.pdf", "PDF")
	require.NoError(t, err)
	require.Len(t, updated.Documents, 1)
	assert.Equal(t, "Contrat.pdf", updated.Documents[0].Name)
	assert.Equal(t, "PDF", updated.Documents[0].Type)
	assert.False(t, updated.DateUpdated.Before(c.DateUpdated))
}

func TestCaseService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.workspace.Cases.Create(context.Background(), " ", "", "desc")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, 2)
}

func TestCaseService_AttachDocumentTypeFromExtension(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.workspace.Cases.Create(ctx, "Martin", "Succession", "")
	require.NoError(t, err)

	updated, err := f.workspace.Cases.AttachDocument(ctx, c.ID, "testament.docx", "")
	require.NoError(t, err)
	assert.Equal(t, "DOCX", updated.Documents[0].Type)

	_, err = f.workspace.Cases.AttachDocument(ctx, c.ID, "notes", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.workspace.Cases.AttachDocument(ctx, c.ID, "", "PDF")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCaseService_UnknownCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.workspace.Cases.AttachDocument(ctx, "missing", "Contrat.pdf", "PDF")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.workspace.Cases.AppendAIResult(ctx, "missing", "t", "content")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.workspace.Cases.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCaseService_AppendAIResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.workspace.Cases.Create(ctx, "Dupont SARL", "Litige X", "")
	require.NoError(t, err)

	updated, err := f.workspace.Cases.AppendAIResult(ctx, c.ID, "", "Analyse du contrat")
	require.NoError(t, err)
	require.Len(t, updated.AIResponses, 1)
	assert.Equal(t, DefaultAIResultTitle, updated.AIResponses[0].Query)
	assert.Equal(t, "Analyse du contrat", updated.AIResponses[0].Response)

	_, err = f.workspace.Cases.AppendAIResult(ctx, c.ID, "Titre", "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func seedCases(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	for _, c := range []struct{ client, title string }{
		{"Dupont SARL", "Litige X"},
		{"Martin", "Succession Dupont"},
		{"Société Générale Bail", "Bail commercial"},
		{"Durand", "Divorce"},
	} {
		_, err := f.workspace.Cases.Create(ctx, c.client, c.title, "")
		require.NoError(t, err)
	}
}

func titles(cases []store.CaseFile) []string {
	out := make([]string, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.Title)
	}
	return out
}

func TestCaseService_Filter(t *testing.T) {
	f := newFixture(t)
	seedCases(t, f)
	ctx := context.Background()

	got, err := CollectCases(f.workspace.Cases.Filter(ctx, "DUPONT", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Litige X", "Succession Dupont"}, titles(got))

	got, err = CollectCases(f.workspace.Cases.Filter(ctx, "", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Litige X", "Succession Dupont", "Bail commercial", "Divorce"}, titles(got))

	got, err = CollectCases(f.workspace.Cases.Filter(ctx, "", store.CaseStatusClosed))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = CollectCases(f.workspace.Cases.Filter(ctx, "", store.CaseStatus("LOST")))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCaseService_FilterPredicatesCommute(t *testing.T) {
	f := newFixture(t)
	seedCases(t, f)
	ctx := context.Background()
	cases := f.workspace.Cases

	for _, term := range []string{"", "bail", "dupont", "zzz"} {
		for _, status := range []store.CaseStatus{"", store.CaseStatusOpen, store.CaseStatusArchived} {
			both, err := CollectCases(cases.Filter(ctx, term, status))
			require.NoError(t, err)
			byTerm, err := CollectCases(cases.Filter(ctx, term, ""))
			require.NoError(t, err)
			byStatus, err := CollectCases(cases.Filter(ctx, "", status))
			require.NoError(t, err)

			inStatus := map[string]bool{}
			for _, c := range byStatus {
				inStatus[c.ID] = true
			}
			var intersection []store.CaseFile
			for _, c := range byTerm {
				if inStatus[c.ID] {
					intersection = append(intersection, c)
				}
			}
			assert.Equal(t, titles(intersection), titles(both), "term=%q status=%q", term, status)
		}
	}
}

func TestCaseService_FilterIsLazyAndRestartable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.workspace.Cases.Filter(ctx, "bail", "")

	_, err := f.workspace.Cases.Create(ctx, "Leroy", "Bail rural", "")
	require.NoError(t, err)
	first, err := CollectCases(view)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bail rural"}, titles(first))

	_, err = f.workspace.Cases.Create(ctx, "Petit", "Bail professionnel", "")
	require.NoError(t, err)
	second, err := CollectCases(view)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bail rural", "Bail professionnel"}, titles(second))

	for c := range view {
		assert.Equal(t, "Bail rural", c.Title)
		break
	}
}
