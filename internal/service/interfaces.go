package service

// PhotoStore abstracts the blog-photo file store so the blog service can be
// tested without touching disk.
type PhotoStore interface {
	SavePhoto(encoded, ownerID string) (string, error)
	DeleteByURL(url string) error
}
