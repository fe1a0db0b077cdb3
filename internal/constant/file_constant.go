package constant

const (
	NotifyFileUploaded     = "Uploaded %s."
	NotifyFileReplaced     = "Replaced %s with the new upload."
	NotifyFileUploadFailed = "Could not upload %s: %s"
	NotifyFileToggled      = "%s is now %s."
	NotifyFileToggleFailed = "Could not change the status of %s: %s"
	NotifyFileVanished     = "%s no longer exists on the server and was removed from the list."
	NotifyFileDeleted      = "Deleted %s."
	NotifyFileDeleteFailed = "Could not delete %s: %s"
	NotifyFileUnknown      = "No uploaded file with id %s."
	NotifyFileBusy         = "%s already has an operation in progress."
	NotifyFileLoadFailed   = "Could not load uploaded files: %s"
)
