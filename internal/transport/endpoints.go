package transport

const (
	endpointListFiles   = "/get_uploaded_files" // GET
	endpointUploadFile  = "/upload_file"        // POST multipart, field "file"
	endpointToggleFile  = "/toggle_file_status" // POST
	endpointDeleteFile  = "/delete_file/%s"     // DELETE
	endpointClearMemory = "/clear_memory"       // POST
	endpointStream      = "/ws/stream"          // WebSocket
	uploadFormField     = "file"
	taggedProtocolQuery = "?protocol=tagged"
)
