package japi_test

import (
	"context"
	"fmt"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/fields"
	"github.com/reoring/japi/resource"
)

func Example() {
	articles := resource.New("articles").
		Attr(fields.Str("title").MinLen(1).RequiredOn(japi.EventPost)).
		Rel(fields.ToOne("author").ForeignTypes("people")).
		MustBuild()

	doc, _ := japi.DecodeValue([]byte(`{
		"data": {
			"type": "articles",
			"id": "7",
			"attributes": {"title": "Hello"},
			"relationships": {"author": {"data": {"type": "people", "id": "42"}}}
		}
	}`))

	native, _, err := articles.Deserialize(context.Background(), doc, japi.DeserializeOpt{Event: japi.EventPost})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(native["id"], native["title"], native["author"])
	// Output: 7 Hello people/42
}

func Example_validationErrors() {
	articles := resource.New("articles").
		Attr(fields.Str("title").MinLen(5)).
		MustBuild()

	doc := map[string]any{
		"data": map[string]any{
			"type":       "articles",
			"attributes": map[string]any{"title": "Hi"},
		},
	}
	_, _, err := articles.Deserialize(context.Background(), doc, japi.DeserializeOpt{})
	el, _ := japi.AsErrorList(err)
	for _, e := range el {
		fmt.Println(e)
	}
	// Output: invalid_value at /data/attributes/title: Must be at least 5 characters long.
}
