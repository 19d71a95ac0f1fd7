package dto

type InstallOutput struct {
	Cache   string
	Stored  []string
	Skipped map[string]string
}

type ActivateOutput struct {
	Cache   string
	Deleted []string
}

type FetchInput struct {
	Method string
	URL    string
	Header map[string][]string
	Body   []byte
}

type FetchOutput struct {
	Status      int
	ContentType string
	Header      map[string][]string
	Body        []byte
	FromCache   bool
}

type StatusOutput struct {
	Cache   string
	Origin  string
	Entries int
	Assets  int
}
