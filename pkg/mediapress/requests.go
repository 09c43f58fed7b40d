package mediapress

// Request DTOs. Validation constraints are declared statically on each request
// type and evaluated before any blob or record mutation.

// ImageUpload carries one uploaded image. Data is fully buffered; uploads are
// bounded by MaxImageBytes before they reach the service.
type ImageUpload struct {
	FileName string
	Data     []byte
}

// CreatePostRequest contains parameters for creating a post.
type CreatePostRequest struct {
	Title   string       `form:"title" validate:"required"`
	Content string       `form:"content" validate:"required"`
	Image   *ImageUpload `form:"image" validate:"required"`
}

// UpdatePostRequest contains parameters for updating a post. Image is
// optional; when nil the stored image reference is left untouched.
type UpdatePostRequest struct {
	Title   string       `form:"title" validate:"required"`
	Content string       `form:"content" validate:"required"`
	Image   *ImageUpload `form:"image"`
}

// CreateProductRequest contains parameters for creating a product. Price and
// Stock arrive as form strings and are validated as numeric before parsing.
type CreateProductRequest struct {
	Title string       `form:"title" validate:"required,min=5"`
	Desc  string       `form:"desc" validate:"required,min=10"`
	Price string       `form:"price" validate:"required,numeric"`
	Stock string       `form:"stock" validate:"required,numeric"`
	Image *ImageUpload `form:"image" validate:"required"`
}

// UpdateProductRequest contains parameters for updating a product.
type UpdateProductRequest struct {
	Title string       `form:"title" validate:"required,min=5"`
	Desc  string       `form:"desc" validate:"required,min=10"`
	Price string       `form:"price" validate:"required,numeric"`
	Stock string       `form:"stock" validate:"required,numeric"`
	Image *ImageUpload `form:"image"`
}

// RegisterUserRequest contains parameters for registering an API account.
type RegisterUserRequest struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}
