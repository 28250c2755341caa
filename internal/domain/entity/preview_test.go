package entity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPreviewRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PreviewRequest
		wantErr bool
	}{
		{name: "url only", req: PreviewRequest{URL: "https://example.com"}},
		{name: "raw html only", req: PreviewRequest{RawHTML: "<html></html>"}},
		{name: "both", req: PreviewRequest{URL: "https://example.com", RawHTML: "<p>"}},
		{name: "neither", req: PreviewRequest{}, wantErr: true},
		{name: "blank url", req: PreviewRequest{URL: "  "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			kind, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, KindMissingInput, kind)
		})
	}
}

func TestExtractedData_Merge(t *testing.T) {
	base := ExtractedData{Title: "OG Title", Price: "$10"}
	next := ExtractedData{Title: "Page Title", Image: "/a.png", Price: "$20", SiteName: "Shop"}

	got := base.Merge(next)
	want := ExtractedData{Title: "OG Title", Image: "/a.png", Price: "$10", SiteName: "Shop"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractedData_Fields(t *testing.T) {
	d := ExtractedData{Title: "t", Currency: "USD"}

	assert.Equal(t, FieldTitle|FieldCurrency, d.Fields())
	assert.True(t, d.Fields().Covers(FieldTitle))
	assert.False(t, d.Fields().Covers(FieldTitle|FieldImage))
	assert.True(t, ExtractedData{}.Fields().Covers(0))
}

func TestCheckHTMLSize(t *testing.T) {
	assert.NoError(t, CheckHTMLSize(0, 512, "raw_html"))
	assert.NoError(t, CheckHTMLSize(512*1024, 512, "raw_html"))

	err := CheckHTMLSize(512*1024+1, 512, "raw_html")
	var f *Failure
	if assert.ErrorAs(t, err, &f) {
		assert.Equal(t, KindPayloadTooLarge, f.Kind)
		assert.Equal(t, "raw_html", f.Field)
		assert.Equal(t, "HTML content exceeds maximum size of 512KB (actual: 512.00KB)", f.Message)
	}

	err = CheckHTMLSize(600*1024, 512, "")
	if assert.ErrorAs(t, err, &f) {
		assert.Contains(t, f.Message, "actual: 600.00KB")
	}
}
