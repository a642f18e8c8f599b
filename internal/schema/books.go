package schema

// BookCreate requires every book attribute, including the ISBN.
var BookCreate = Schema{
	Name: "book_create",
	Fields: []Field{
		{Name: "isbn", Kind: KindString, Required: true, Rules: "min=1,max=32"},
		{Name: "amazon_url", Kind: KindString, Required: true, Rules: "http_url,max=2048"},
		{Name: "author", Kind: KindString, Required: true, Rules: "min=1,max=255"},
		{Name: "language", Kind: KindString, Required: true, Rules: "min=1,max=64"},
		{Name: "pages", Kind: KindInteger, Required: true, Rules: "gt=0"},
		{Name: "publisher", Kind: KindString, Required: true, Rules: "min=1,max=255"},
		{Name: "title", Kind: KindString, Required: true, Rules: "min=1,max=512"},
		{Name: "year", Kind: KindInteger, Required: true, Rules: "gte=0,lte=9999"},
	},
}

// BookUpdate accepts any subset of the mutable attributes. The ISBN is not
// part of it, so an attempt to change it is an unknown field.
var BookUpdate = Schema{
	Name: "book_update",
	Fields: []Field{
		{Name: "amazon_url", Kind: KindString, Nullable: true, Rules: "http_url,max=2048"},
		{Name: "author", Kind: KindString, Nullable: true, Rules: "min=1,max=255"},
		{Name: "language", Kind: KindString, Nullable: true, Rules: "min=1,max=64"},
		{Name: "pages", Kind: KindInteger, Nullable: true, Rules: "gt=0"},
		{Name: "publisher", Kind: KindString, Nullable: true, Rules: "min=1,max=255"},
		{Name: "title", Kind: KindString, Rules: "min=1,max=512"},
		{Name: "year", Kind: KindInteger, Nullable: true, Rules: "gte=0,lte=9999"},
	},
}
